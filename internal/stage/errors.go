package stage

import "errors"

// ErrSetupFailed is wrapped into the error a Runner returns to its
// supervisor when a stage's one-time Setup call fails, distinguishing a
// configuration/resource failure from a Process-time item failure (which
// is logged and dropped, never returned).
var ErrSetupFailed = errors.New("stage setup failed")
