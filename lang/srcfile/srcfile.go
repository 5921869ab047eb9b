// Package srcfile renders byte offsets into a source file as 1-based
// line/column positions and carries the single fatal-error type used
// throughout the compiler's pipeline.
//
// This plays the role the language reference calls the "source-location
// logger": an external collaborator that takes a byte offset and renders
// a line/column pair, aborting the pipeline on the first error.
package srcfile

import "fmt"

// File wraps a source file's bytes together with the path it was read
// from, and can translate a byte offset into a line/column pair.
type File struct {
	Path string
	Src  []byte

	// lineStarts[i] is the byte offset of the first byte of line i+1.
	lineStarts []int
}

// New builds a File from the given path and contents, precomputing the
// line-start index used by LineCol.
func New(path string, src []byte) *File {
	f := &File{Path: path, Src: src, lineStarts: []int{0}}
	for i, b := range src {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// LineCol returns the 1-based line and column corresponding to the given
// byte offset.
func (f *File) LineCol(offset int) (line, col int) {
	// binary search for the last line start <= offset
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	line = lo + 1
	col = offset - f.lineStarts[lo] + 1
	return line, col
}

// Error is the single fatal-error kind produced anywhere in the pipeline:
// a message paired with the byte offset in the source where it occurred.
type Error struct {
	Message string
	Offset  int
}

func (e *Error) Error() string { return e.Message }

// NewError builds a pipeline error at the given byte offset.
func NewError(offset int, format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Offset: offset}
}

// Format renders the error the way the CLI reports a failed compilation:
// "<file>[<line>:<col>]: <message>".
func (e *Error) Format(f *File) string {
	line, col := f.LineCol(e.Offset)
	return fmt.Sprintf("%s[%d:%d]: %s", f.Path, line, col, e.Message)
}
