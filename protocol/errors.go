package protocol

import "fmt"

// CommandNotAvailableError reports that a command code is not part of the
// protocol a device was resolved against.
type CommandNotAvailableError struct {
	Code     CommandCode
	Protocol ProtocolType
}

func (e *CommandNotAvailableError) Error() string {
	return fmt.Sprintf("command %s not available in protocol %s", e.Code, e.Protocol)
}

// ValueError reports a request value that violates the declared field type.
type ValueError struct {
	Field FieldName
	Err   error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Field, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }
