package composer

import "fmt"

// InputError is a request that cannot be composed as given.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func inputErrorf(format string, args ...interface{}) error {
	return &InputError{Reason: fmt.Sprintf(format, args...)}
}
