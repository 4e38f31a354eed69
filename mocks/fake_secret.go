//+build !release

package mocks

import "github.com/pkg/errors"

type fakeSecret struct {
	values map[string]string
}

func (s *fakeSecret) Get(name string) (string, error) {
	v, ok := s.values[name]
	if !ok {
		return "", errors.New("not found")
	}

	return v, nil
}

// FakeNewSecretStore creates a new fake secrets store.
func FakeNewSecretStore(values map[string]string) *fakeSecret {
	if nil == values {
		values = make(map[string]string)
	}

	return &fakeSecret{
		values: values,
	}
}
