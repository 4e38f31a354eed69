//+build !release

package mocks

import (
	"sync"
	"time"
)

type fakeCron struct {
	sync.Mutex
	jobs map[int]func()
	last int
}

func (c *fakeCron) AddFunc(spec string, cmd func()) (int, error) {
	c.Lock()
	defer c.Unlock()

	c.last++
	c.jobs[c.last] = cmd
	return c.last, nil
}

func (c *fakeCron) AddInterval(every time.Duration, cmd func()) int {
	id, _ := c.AddFunc("", cmd)
	return id
}

func (c *fakeCron) RemoveFunc(id int) {
	c.Lock()
	defer c.Unlock()

	delete(c.jobs, id)
}

func (c *fakeCron) Stop() {
}

// Fire invokes every scheduled job.
func (c *fakeCron) Fire() {
	c.Lock()
	jobs := make([]func(), 0, len(c.jobs))
	for _, v := range c.jobs {
		jobs = append(jobs, v)
	}
	c.Unlock()

	for _, v := range jobs {
		v()
	}
}

func (c *fakeCron) Jobs() int {
	c.Lock()
	defer c.Unlock()

	return len(c.jobs)
}

// FakeNewCron creates a fake cron provider.
func FakeNewCron() *fakeCron {
	return &fakeCron{
		jobs: make(map[int]func()),
	}
}
