package utils

import (
	"time"

	"go-home.io/x/macs/providers"
	"gopkg.in/robfig/cron.v2"
)

// Minimal interval accepted by scheduler.
const minInterval = time.Second

// Background jobs scheduler.
type scheduler struct {
	cron *cron.Cron
}

// NewCron creates and starts a new scheduler.
func NewCron() providers.ICronProvider {
	s := &scheduler{
		cron: cron.New(),
	}

	s.cron.Start()
	return s
}

// AddFunc schedules a job using cron expression.
func (s *scheduler) AddFunc(spec string, cmd func()) (int, error) {
	id, err := s.cron.AddFunc(spec, cmd)
	return int(id), err
}

// AddInterval schedules a job which runs every given duration.
// Durations are rounded to whole seconds.
func (s *scheduler) AddInterval(every time.Duration, cmd func()) int {
	if every < minInterval {
		every = minInterval
	}

	return int(s.cron.Schedule(cron.Every(every), cron.FuncJob(cmd)))
}

// RemoveFunc removes scheduled job.
func (s *scheduler) RemoveFunc(id int) {
	s.cron.Remove(cron.EntryID(id))
}

// Jobs returns number of scheduled jobs.
func (s *scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Stop halts the scheduler, running jobs are not interrupted.
func (s *scheduler) Stop() {
	s.cron.Stop()
}
