package providers

import "time"

// ICronProvider defines background jobs scheduler.
type ICronProvider interface {
	AddFunc(spec string, cmd func()) (int, error)
	AddInterval(every time.Duration, cmd func()) int
	RemoveFunc(id int)
	Jobs() int
	Stop()
}
