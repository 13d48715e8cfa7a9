package eventstream

import "errors"

// ErrNilIdentifiedEvent indicates a nil identified event payload was provided to a publisher.
var ErrNilIdentifiedEvent = errors.New("nil identified event")
