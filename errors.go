package vocabscope

import (
	"errors"
	"fmt"
)

// Common analysis errors
var (
	// ErrRenderSkipped indicates no valid points survived sanitization, so
	// no image was written. It marks a skip, not a failure.
	ErrRenderSkipped = errors.New("no valid points to render, skipping image")
)

// ShapeError reports a vocabulary/embedding row count mismatch. It aborts
// the affected model's analysis but never the batch.
type ShapeError struct {
	Model string
	Vocab int
	Rows  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("[%s]: embedding matrix has %d rows for %d vocabulary entries", e.Model, e.Rows, e.Vocab)
}

// Is implements errors.Is support for ShapeError.
func (e *ShapeError) Is(target error) bool {
	_, ok := target.(*ShapeError)
	return ok
}
