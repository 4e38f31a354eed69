package common

const (
	// LogSystemToken describes system log entry.
	LogSystemToken = "system"
	// LogEntityToken describes platform entity log entry.
	LogEntityToken = "entity"
	// LogSensorToken describes monitored quantity log entry.
	LogSensorToken = "sensor"
	// LogMessageTypeToken describes channel message type log entry.
	LogMessageTypeToken = "msg_type"
	// LogOriginToken describes message origin log entry.
	LogOriginToken = "origin"
	// LogMoodToken describes mood log entry.
	LogMoodToken = "mood"
	// LogRunToken describes pipeline run log entry.
	LogRunToken = "run"
	// LogPipelineToken describes pipeline log entry.
	LogPipelineToken = "pipeline"
	// LogURLToken describes URL log entry.
	LogURLToken = "url"
	// LogNamespaceToken describes debug namespace log entry.
	LogNamespaceToken = "ns"
)

const (
	// LogNodeToken describes node log entry.
	LogNodeToken = "node"
	// LogErrorToken describes error log entry.
	LogErrorToken = "error"
	// LogFileToken describes file log entry.
	LogFileToken = "file"
	// LogProviderToken describes provider log entry.
	LogProviderToken = "provider"
	// LogFieldToken describes field log entry.
	LogFieldToken = "field"
	// LogNameToken describes name log entry.
	LogNameToken = "name"
)
