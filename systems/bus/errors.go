package bus

// ErrUnknownMessage defines an unknown message type error.
type ErrUnknownMessage struct {
	Type string
}

// Error formats output.
func (e *ErrUnknownMessage) Error() string {
	return "unknown message type " + e.Type
}

// ErrCorruptedMessage defines a corrupted message error.
type ErrCorruptedMessage struct {
}

// Error formats output.
func (*ErrCorruptedMessage) Error() string {
	return "failed to unmarshal channel message"
}
