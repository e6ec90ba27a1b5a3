package transport

import "errors"

// ErrTransportClosed marks a transport stage's clean shutdown path: client
// disconnect, broken pipe/connection reset, or stop-flag-triggered socket
// close. It is never returned from Run (the transport exits with a nil
// error in all of these cases, matching spec.md §4.4's "clean exit, not a
// failure"); it exists so callers that want to distinguish "closed
// cleanly" from "never got to run" can check internal logs against a
// named sentinel instead of a bare string.
var ErrTransportClosed = errors.New("transport connection closed")
