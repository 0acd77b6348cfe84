package eventstream

import "errors"

// ErrNilNotebookEvent indicates a nil event payload was provided to a publisher.
var ErrNilNotebookEvent = errors.New("nil notebook event")
