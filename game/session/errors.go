package session

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrSessionClosed        = errors.New("session closed")
)

// AdmissionError rejects a connection at identification time. The transport
// delivers the reason to the client and closes the connection; the session
// state is left untouched.
type AdmissionError struct {
	Reason string
}

func (e *AdmissionError) Error() string {
	return e.Reason
}

func admissionErrorf(format string, args ...any) *AdmissionError {
	return &AdmissionError{Reason: fmt.Sprintf(format, args...)}
}

// IsAdmissionError reports whether err is an admission rejection.
func IsAdmissionError(err error) bool {
	var ae *AdmissionError
	return errors.As(err, &ae)
}
