package creds

import "os"

// IsZero reports whether c carries no usable key material, which is how
// the driver decides whether the private session and agent subprocess
// are allowed to start.
func (c Credentials) IsZero() bool {
	return c.APIKey == "" || c.APISecret == ""
}

// Loader resolves credentials from wherever the embedding caller keeps
// them (OS keychain, a secrets manager, ...). internal/creds itself only
// ships the env-var loader below; anything else is the caller's concern.
type Loader interface {
	Load() (Credentials, error)
}

// EnvLoader reads credentials from the given environment variable names.
// A missing or empty value on either side yields a zero Credentials,
// which the caller must treat as "not configured" rather than an error.
type EnvLoader struct {
	APIKeyVar    string
	APISecretVar string
}

// NewEnvLoader builds an EnvLoader for the given variable names.
func NewEnvLoader(apiKeyVar, apiSecretVar string) EnvLoader {
	return EnvLoader{APIKeyVar: apiKeyVar, APISecretVar: apiSecretVar}
}

// Load implements Loader.
func (l EnvLoader) Load() (Credentials, error) {
	return Credentials{
		APIKey:    os.Getenv(l.APIKeyVar),
		APISecret: os.Getenv(l.APISecretVar),
	}, nil
}
