// Package errors defines the error kinds the fat12 engine and its CLI surface
// raise. Each kind named in the specification's error handling section has a
// DiskoError constant here; an error returned by the engine can always be
// tested with errors.Is against one of these constants, even after it has
// been given a more specific message or has wrapped an underlying cause.
package errors

// DiskoError is a bare error kind with a fixed, human-readable message. It
// implements error directly, so it can be returned (and matched with
// errors.Is) without decoration, or refined with WithMessage or Wrap.
type DiskoError string

func (e DiskoError) Error() string { return string(e) }

// WithMessage returns a new error of this kind carrying additional context.
// errors.Is(result, e) remains true.
func (e DiskoError) WithMessage(message string) *WrappedError {
	return &WrappedError{kind: e, message: e.Error() + ": " + message}
}

// Wrap returns a new error of this kind whose cause is err. errors.Is(result, e)
// and errors.Is(result, err) are both true.
func (e DiskoError) Wrap(err error) *WrappedError {
	return &WrappedError{kind: e, message: e.Error() + ": " + err.Error(), cause: err}
}

const (
	// ErrIO covers a host file that's absent, unreadable, unwritable, or that
	// returned fewer bytes than requested.
	ErrIO = DiskoError("input/output error")
	// ErrParse covers an implausible BPB field or a non-ASCII directory entry
	// filename.
	ErrParse = DiskoError("could not parse FAT12 structure")
	// ErrNotFound covers a filename lookup that matched no live root entry.
	ErrNotFound = DiskoError("no such file")
	// ErrAlreadyExists covers CreateFileEntry finding a same-named live entry.
	ErrAlreadyExists = DiskoError("file already exists")
	// ErrNoFreeSlot covers a root directory with no free or reusable slot left.
	ErrNoFreeSlot = DiskoError("root directory is full")
	// ErrOutOfSpace covers a FAT with no free cluster left to allocate.
	ErrOutOfSpace = DiskoError("no space left on device")
	// ErrFormat covers a filename that does not fit the 8.3 convention.
	ErrFormat = DiskoError("filename does not fit 8.3 format")
	// ErrBounds covers an attempt to read or write past the end of a section,
	// sector, or other fixed-size byte window.
	ErrBounds = DiskoError("out of bounds")
	// ErrUsage covers a wrong argument count from the CLI surface.
	ErrUsage = DiskoError("usage error")
)
