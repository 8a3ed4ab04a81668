package repository

import (
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

var (
	// ErrMissingFile is returned when a required file of the git directory is absent.
	ErrMissingFile = ferrors.NotFoundError("git directory is missing a required file").Build()
	// ErrMissingDirectory is returned when a required directory of the git directory is absent.
	ErrMissingDirectory = ferrors.NotFoundError("git directory is missing a required directory").Build()
	// ErrRefNotFound is returned when neither a loose nor a packed reference exists.
	ErrRefNotFound = ferrors.NotFoundError("reference not found").Build()
	// ErrRefCycle is returned when symbolic references loop.
	ErrRefCycle = ferrors.ValidationError("symbolic reference cycle").Build()
	// ErrRefTooDeep is returned when a symbolic chain exceeds maxLinkDepth.
	ErrRefTooDeep = ferrors.ValidationError("symbolic reference chain too deep").Build()
	// ErrAmbiguous is returned when an abbreviated id matches several objects.
	ErrAmbiguous = ferrors.ValidationError("ambiguous object name").Build()
	// ErrUnknownRevision is returned when a revision names nothing.
	ErrUnknownRevision = ferrors.NotFoundError("unknown revision").Build()
	// ErrUnexpectedKind is returned when an object is not of the requested kind.
	ErrUnexpectedKind = ferrors.ObjectError("unexpected object kind").Build()
	// ErrLocked is returned when a reference lock file already exists.
	ErrLocked = ferrors.FileSystemError("reference is locked").Build()
)
