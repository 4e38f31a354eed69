//+build !release

package mocks

import (
	"go-home.io/x/macs/plugins/common"
	"go-home.io/x/macs/providers"
)

type fakeValidator struct {
	success bool
}

func (f *fakeValidator) SetLogger(logger common.ILoggerProvider) {
}

func (f *fakeValidator) Validate(interface{}) bool {
	return f.success
}

func (f *fakeValidator) Sanitize(interface{}, interface{}) []string {
	return nil
}

// FakeNewValidator creates a new fake validation provider.
func FakeNewValidator(success bool) providers.IValidatorProvider {
	return &fakeValidator{
		success: success,
	}
}
