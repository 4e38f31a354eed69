package common

// ILoggerProvider defines logger provider which is passed to every system.
type ILoggerProvider interface {
	Debug(msg string, fields ...string)
	Info(msg string, fields ...string)
	Warn(msg string, fields ...string)
	Error(msg string, err error, fields ...string)
	Fatal(msg string, err error, fields ...string)
	Flush()
}

// IDebugTracer defines opt-in diagnostic channel.
// Namespaces are matched against the current debug selection.
type IDebugTracer interface {
	Trace(namespace string, msg string, fields ...string)
	Enabled(namespace string) bool
	SetSelection(selection string)
	Backlog() []string
}

// ISecretProvider defines secrets store which is available for config templates.
type ISecretProvider interface {
	Get(name string) (string, error)
}
