package server

// ErrNoRuntime has data for display request while surface is remote.
type ErrNoRuntime struct {
}

// Error formats output.
func (*ErrNoRuntime) Error() string {
	return "headless surface is not running"
}

// ErrUnknownInput has data for unsupported display input.
type ErrUnknownInput struct {
	Event string
}

// Error formats output.
func (e *ErrUnknownInput) Error() string {
	return "unknown display input " + e.Event
}
