package interfaces

import "errors"

var (
	ErrActionFailed       = errors.New("privileged action failed")
	ErrMalformedOutput    = errors.New("malformed action output")
	ErrKeyNotFound        = errors.New("key not found")
	ErrInvalidFingerprint = errors.New("invalid fingerprint")
	ErrUnknownKeyKind     = errors.New("unknown key kind")
)

// ActionError is returned by an ActionRunner when the helper exits non-zero.
// Message carries the helper's own description of the failure and is shown to
// the user as is.
type ActionError struct {
	Module   string
	Args     []string
	ExitCode int
	Message  string
}

func (e *ActionError) Error() string {
	return e.Message
}

func (e *ActionError) Unwrap() error {
	return ErrActionFailed
}
