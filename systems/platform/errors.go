package platform

import "fmt"

// ErrAuthFailed has data for rejected access token.
type ErrAuthFailed struct {
	Message string
}

// Error formats output.
func (e *ErrAuthFailed) Error() string {
	return "authentication failed: " + e.Message
}

// ErrNotConnected has data for call without active connection.
type ErrNotConnected struct {
}

// Error formats output.
func (*ErrNotConnected) Error() string {
	return "platform is not connected"
}

// ErrRPCFailed has data for unsuccessful RPC result.
type ErrRPCFailed struct {
	Type    string
	Code    string
	Message string
}

// Error formats output.
func (e *ErrRPCFailed) Error() string {
	return fmt.Sprintf("rpc %s failed: %s %s", e.Type, e.Code, e.Message)
}

// ErrUnexpectedMessage has data for protocol violation.
type ErrUnexpectedMessage struct {
	Type string
}

// Error formats output.
func (e *ErrUnexpectedMessage) Error() string {
	return "unexpected message: " + e.Type
}
