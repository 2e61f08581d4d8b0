package txn

import "errors"

// ErrSelectionOutOfRange indicates a selection outside the new document.
var ErrSelectionOutOfRange = errors.New("selection out of range")
