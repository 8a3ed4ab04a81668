package journal

import (
	"github.com/NicolasDP/git/internal/foundation/errors"
)

var (
	// ErrOpenFailed indicates the journal database could not be opened.
	ErrOpenFailed = errors.JournalError("could not open journal database").Build()

	// ErrSchemaFailed indicates the journal schema could not be created.
	ErrSchemaFailed = errors.JournalError("failed to initialize journal schema").Build()

	// ErrAppendFailed indicates an event could not be recorded.
	ErrAppendFailed = errors.JournalError("failed to append journal event").Build()

	// ErrQueryFailed indicates reading events failed.
	ErrQueryFailed = errors.JournalError("failed to query journal events").Build()

	// ErrPayloadFailed indicates an event payload could not be encoded or decoded.
	ErrPayloadFailed = errors.JournalError("failed to encode journal payload").Build()
)

func wrap(sentinel *errors.ClassifiedError, err error) error {
	return errors.WrapError(err, sentinel.Category(), sentinel.Message()).Build()
}
