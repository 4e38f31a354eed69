package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"go-home.io/x/macs/plugins/common"
	"gopkg.in/yaml.v2"
)

// Default console logger.
type consoleLogger struct {
	log *logrus.Logger
}

// Debug prints debug level message.
func (p *consoleLogger) Debug(msg string, fields ...string) {
	p.log.WithFields(withFields(fields...)).Debug(msg)
}

// Info prints info level message.
func (p *consoleLogger) Info(msg string, fields ...string) {
	p.log.WithFields(withFields(fields...)).Info(msg)
}

// Warn prints warning level message.
func (p *consoleLogger) Warn(msg string, fields ...string) {
	p.log.WithFields(withFields(fields...)).Warn(msg)
}

// Error prints error level message.
func (p *consoleLogger) Error(msg string, err error, fields ...string) {
	p.log.WithFields(withFields(appendError(fields, err)...)).Error(msg)
}

// Fatal prints fatal level message and exits.
func (p *consoleLogger) Fatal(msg string, err error, fields ...string) {
	p.log.WithFields(withFields(appendError(fields, err)...)).Error(msg)
	os.Exit(1)
}

// Flush don't needed for a console logger.
func (p *consoleLogger) Flush() {
}

// NewConsoleLogger constructs a new console logger.
func NewConsoleLogger(level logrus.Level, out io.Writer) common.ILoggerProvider {
	if nil == out {
		out = os.Stdout
	}

	l := logrus.New()
	l.Out = out
	l.Level = level
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "Jan _2 15:04:05.000",
	}

	return &consoleLogger{
		log: l,
	}
}

// Helper method to add generic fields to the output.
func withFields(fields ...string) logrus.Fields {
	fLen := len(fields)
	result := make(logrus.Fields, int(fLen/2))
	for ii := 0; ii < fLen; ii += 2 {
		if ii+1 >= fLen {
			break
		}

		result[fields[ii]] = fields[ii+1]
	}

	return result
}

// Appends error token if error is present.
func appendError(fields []string, err error) []string {
	if nil == err {
		return fields
	}

	return append(fields, common.LogErrorToken, err.Error())
}

// Level config.
type levelConfig struct {
	Level string `yaml:"level"`
}

// Returns log level from raw config.
func getLogLevel(config []byte) logrus.Level {
	c := &levelConfig{}
	if err := yaml.Unmarshal(config, c); err != nil {
		return logrus.InfoLevel
	}

	return ParseLevel(c.Level)
}

// ParseLevel converts string into log level. Info if unknown.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "dbg", "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "err", "error":
		return logrus.ErrorLevel
	}

	return logrus.InfoLevel
}
