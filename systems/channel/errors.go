package channel

// ErrNoRecipient defines a missing recipient window or origin error.
type ErrNoRecipient struct {
}

// Error formats output.
func (*ErrNoRecipient) Error() string {
	return "recipient window or origin is not available"
}

// ErrUntrustedMessage defines a message from unexpected source or origin.
type ErrUntrustedMessage struct {
}

// Error formats output.
func (*ErrUntrustedMessage) Error() string {
	return "message source or origin is not trusted"
}

// ErrWindowClosed defines a post into closed window.
type ErrWindowClosed struct {
}

// Error formats output.
func (*ErrWindowClosed) Error() string {
	return "window is closed"
}
