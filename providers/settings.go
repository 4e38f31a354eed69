package providers

import (
	"net/url"
	"strings"

	"go-home.io/x/macs/plugins/common"
)

// ISettingsProvider defines settings loader provider logic.
type ISettingsProvider interface {
	SystemLogger() common.ILoggerProvider
	Tracer() common.IDebugTracer
	NodeID() string
	Cron() ICronProvider
	Validator() IValidatorProvider
	ServerSettings() *ServerSettings
	PlatformSettings() *PlatformSettings
	RuntimeSettings() *RuntimeSettings
	CardConfig() *CardConfig
}

// ServerSettings has configured data for the http server and host side.
type ServerSettings struct {
	Name            string `yaml:"name"`
	Port            int    `yaml:"port" validate:"required,port" default:"8000"`
	SurfaceOrigin   string `yaml:"surfaceOrigin" validate:"origin" default:"http://localhost:8000"`
	AllowNullOrigin bool   `yaml:"allowNullOrigin"`
	RemoteSurface   bool   `yaml:"remoteSurface"`
	Preview         bool   `yaml:"preview"`
	FrameIntervalMs int    `yaml:"frameIntervalMs" validate:"gte=16,lte=5000" default:"100"`
	ResyncSchedule  string `yaml:"resyncSchedule" default:"@every 30s"`
}

// PlatformSettings has configured data for the smart-home platform connection.
type PlatformSettings struct {
	URL               string `yaml:"url" validate:"required" default:"ws://localhost:8123/api/websocket"`
	Token             string `yaml:"token"`
	ReconnectDelaySec int    `yaml:"reconnectDelay" validate:"gte=1,lte=600" default:"5"`
	RPCTimeoutSec     int    `yaml:"rpcTimeout" validate:"gte=1,lte=120" default:"10"`
}

// RuntimeSettings has configured data for the headless surface.
type RuntimeSettings struct {
	DisableIdleSequence bool   `yaml:"disableIdleSequence"`
	BoredAfterSec       int    `yaml:"boredAfter" validate:"gte=1" default:"30"`
	SleepAfterSec       int    `yaml:"sleepAfter" validate:"gte=1" default:"30"`
	HoldMs              int    `yaml:"holdMs" validate:"gte=800,lte=10000" default:"800"`
	ViewWidth           int    `yaml:"viewWidth" validate:"gte=1" default:"1280"`
	ViewHeight          int    `yaml:"viewHeight" validate:"gte=1" default:"720"`
	Seed                int64  `yaml:"seed"`
	InitialQuery        string `yaml:"initialQuery"`
}

// Query parses initial state query string, leading "?" is optional.
func (r *RuntimeSettings) Query() (url.Values, error) {
	return url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(r.InitialQuery), "?"))
}
