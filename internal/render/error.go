package render

// Error is a render failure carrying the HTTP status it maps to.
type Error struct {
	Status  int
	Message string
	Err     error
}

func newError(status int, msg string, err error) *Error {
	return &Error{Status: status, Message: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatusCode reports the status the failure should be served with.
func (e *Error) HTTPStatusCode() int {
	return e.Status
}
