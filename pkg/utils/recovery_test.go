package utils_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/vocabscope/pkg/utils"
)

func panicky() (err error) {
	defer utils.RecoverAsError(&err)
	panic("boom")
}

func calm() (err error) {
	defer utils.RecoverAsError(&err)
	return nil
}

func TestRecoverAsError(t *testing.T) {
	err := panicky()
	require.Error(t, err)

	var pe *utils.PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "boom", pe.Value)
	assert.NotEmpty(t, pe.StackTrace)
	assert.Contains(t, err.Error(), "boom")
}

func TestRecoverAsErrorNoPanic(t *testing.T) {
	assert.NoError(t, calm())
}

func TestMustRecover(t *testing.T) {
	assert.Equal(t, "caught", utils.MustRecover(func() { panic("caught") }))
	assert.Nil(t, utils.MustRecover(func() {}))
}
