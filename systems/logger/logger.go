// Package logger provides logrus-backed loggers and the debug tracer.
package logger

import (
	"io"

	"go-home.io/x/macs/plugins/common"
)

// Logger provider wrapper implementation.
type provider struct {
	logger common.ILoggerProvider
	nodeID string
}

// ConstructLogger has data required for a new logger.
type ConstructLogger struct {
	RawConfig []byte
	Level     string
	NodeID    string
	Out       io.Writer
}

// NewLoggerProvider constructs a new logger.
// Level flag has priority over the raw config.
func NewLoggerProvider(ctor *ConstructLogger) common.ILoggerProvider {
	level := getLogLevel(ctor.RawConfig)
	if "" != ctor.Level {
		level = ParseLevel(ctor.Level)
	}

	return &provider{
		nodeID: ctor.NodeID,
		logger: NewConsoleLogger(level, ctor.Out),
	}
}

// Debug sends debug level message.
func (p *provider) Debug(msg string, fields ...string) {
	p.logger.Debug(msg, p.prepareFields(fields...)...)
}

// Info sends info level message.
func (p *provider) Info(msg string, fields ...string) {
	p.logger.Info(msg, p.prepareFields(fields...)...)
}

// Warn sends warning level message.
func (p *provider) Warn(msg string, fields ...string) {
	p.logger.Warn(msg, p.prepareFields(fields...)...)
}

// Error sends error level message.
func (p *provider) Error(msg string, err error, fields ...string) {
	p.logger.Error(msg, err, p.prepareFields(fields...)...)
}

// Fatal sends fatal level message and exits.
func (p *provider) Fatal(msg string, err error, fields ...string) {
	p.logger.Fatal(msg, err, p.prepareFields(fields...)...)
}

// Flush flushes logger buffer if any.
func (p *provider) Flush() {
	p.logger.Flush()
}

// Extending logger fields with current node ID.
func (p *provider) prepareFields(fields ...string) []string {
	if "" == p.nodeID {
		return fields
	}

	return append(fields, common.LogNodeToken, p.nodeID)
}

// System logger implementation.
type systemLogger struct {
	logger common.ILoggerProvider
	fields []string
}

// NewSystemLogger constructs a logger which adds system name to every entry.
func NewSystemLogger(logger common.ILoggerProvider, system string) common.ILoggerProvider {
	return &systemLogger{
		logger: logger,
		fields: []string{common.LogSystemToken, system},
	}
}

// Debug sends debug level message.
func (l *systemLogger) Debug(msg string, fields ...string) {
	l.logger.Debug(msg, append(fields, l.fields...)...)
}

// Info sends info level message.
func (l *systemLogger) Info(msg string, fields ...string) {
	l.logger.Info(msg, append(fields, l.fields...)...)
}

// Warn sends warning level message.
func (l *systemLogger) Warn(msg string, fields ...string) {
	l.logger.Warn(msg, append(fields, l.fields...)...)
}

// Error sends error level message.
func (l *systemLogger) Error(msg string, err error, fields ...string) {
	l.logger.Error(msg, err, append(fields, l.fields...)...)
}

// Fatal sends fatal level message and exits.
func (l *systemLogger) Fatal(msg string, err error, fields ...string) {
	l.logger.Fatal(msg, err, append(fields, l.fields...)...)
}

// Flush flushes logger buffer if any.
func (l *systemLogger) Flush() {
	l.logger.Flush()
}
