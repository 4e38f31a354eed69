package providers

import "go-home.io/x/macs/plugins/common"

// IValidatorProvider defines yaml structures validator logic.
type IValidatorProvider interface {
	SetLogger(logger common.ILoggerProvider)
	Validate(interface{}) bool
	Sanitize(object interface{}, fallback interface{}) []string
}
