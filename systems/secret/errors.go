package secret

// ErrSecretNotFound has data for missing secret.
type ErrSecretNotFound struct {
	Name string
}

// Error formats output.
func (e *ErrSecretNotFound) Error() string {
	return "secret " + e.Name + " is not found"
}

// ErrCorruptedStore has data for unreadable secrets file.
type ErrCorruptedStore struct {
	File string
}

// Error formats output.
func (e *ErrCorruptedStore) Error() string {
	return "secrets file " + e.File + " is corrupted"
}
