package screenshot

// LookupError reports that the record store could not be queried.
// Error() is shown to visitors; the wrapped cause is only logged.
type LookupError struct {
	Site string
	Err  error
}

func (e *LookupError) Error() string {
	return "unable to load screenshot"
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
