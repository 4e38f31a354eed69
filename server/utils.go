package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-home.io/x/macs/plugins/common"
)

// Plain HTTP_200 API response.
func respondOk(writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	io.WriteString(writer, `{ "status": "OK" }`) // nolint: errcheck
}

// Generic API respond.
func respond(writer http.ResponseWriter, data interface{}) {
	d, err := json.Marshal(data)
	if err != nil {
		respondError(writer, err.Error())
		return
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	writer.Write(d) // nolint: errcheck
}

// Plain HTTP_503 API response.
func respondUnavailable(writer http.ResponseWriter, err error) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusServiceUnavailable)
	io.WriteString(writer, fmt.Sprintf(`{ "status": "ERROR", "problem": "%s"}`, err.Error())) // nolint: errcheck
}

// Plain HTTP_500 API response.
func respondError(writer http.ResponseWriter, err string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusInternalServerError)
	io.WriteString(writer, fmt.Sprintf(`{ "status": "ERROR", "problem": "%s"}`, err)) // nolint: errcheck
}

// Sends access log and recovered panics into the system logger.
type logWriter struct {
	logger common.ILoggerProvider
}

// Write logs a single access line.
func (l *logWriter) Write(p []byte) (int, error) {
	l.logger.Debug(strings.TrimSpace(string(p)), common.LogSystemToken, logSystem)
	return len(p), nil
}

// Println logs recovered panic.
func (l *logWriter) Println(v ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintln(v...)), common.LogSystemToken, logSystem)
}
