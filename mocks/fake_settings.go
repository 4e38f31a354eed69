//+build !release

package mocks

import (
	"github.com/creasty/defaults"
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/providers"
)

type fakeSettings struct {
	logger   *fakeLogger
	tracer   *fakeTracer
	cron     *fakeCron
	server   *providers.ServerSettings
	platform *providers.PlatformSettings
	runtime  *providers.RuntimeSettings
	card     *providers.CardConfig
}

func (f *fakeSettings) SystemLogger() common.ILoggerProvider {
	return f.logger
}

func (f *fakeSettings) Tracer() common.IDebugTracer {
	return f.tracer
}

func (f *fakeSettings) NodeID() string {
	return "macs-tests"
}

func (f *fakeSettings) Cron() providers.ICronProvider {
	return f.cron
}

func (f *fakeSettings) Validator() providers.IValidatorProvider {
	return FakeNewValidator(true)
}

func (f *fakeSettings) ServerSettings() *providers.ServerSettings {
	return f.server
}

func (f *fakeSettings) PlatformSettings() *providers.PlatformSettings {
	return f.platform
}

func (f *fakeSettings) RuntimeSettings() *providers.RuntimeSettings {
	return f.runtime
}

func (f *fakeSettings) CardConfig() *providers.CardConfig {
	return f.card
}

// FireCron invokes every scheduled job.
func (f *fakeSettings) FireCron() {
	f.cron.Fire()
}

// CronJobs returns number of scheduled jobs.
func (f *fakeSettings) CronJobs() int {
	return f.cron.Jobs()
}

// Traces returns lines written into debug channel.
func (f *fakeSettings) Traces() []string {
	return f.tracer.Backlog()
}

// FakeNewSettings creates a fake settings provider with default values.
// Nil card means default card config.
func FakeNewSettings(card *providers.CardConfig) *fakeSettings {
	if nil == card {
		card = providers.NewCardConfig()
	}

	s := &fakeSettings{
		logger:   FakeNewLogger(nil),
		tracer:   FakeNewTracer(),
		cron:     FakeNewCron(),
		server:   &providers.ServerSettings{},
		platform: &providers.PlatformSettings{},
		runtime:  &providers.RuntimeSettings{},
		card:     card,
	}

	defaults.Set(s.server)   // nolint: errcheck
	defaults.Set(s.platform) // nolint: errcheck
	defaults.Set(s.runtime)  // nolint: errcheck
	return s
}
