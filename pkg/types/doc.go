// Package types defines the core data types for the vocabscope pipeline.
//
// This package contains the fundamental types shared by every stage:
//   - Token: a vocabulary unit (integer id plus surface text)
//   - Point: a token projected into 2D, tagged with its character class
//   - EmbeddingType: which embedding layer an analysis reads (input/output)
//
// All types are plain values created at the start of an analysis run and
// discarded when it completes; nothing in this package is persisted.
package types
