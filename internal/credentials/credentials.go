// Package credentials resolves the accessKeyId/accessKeySecret pair used
// to authenticate against the object-storage endpoint.
//
// It is adapted from the teacher's SSH-keystore-for-enrollment design:
// a small Provider interface, a cache-friendly backend, and a factory that
// picks a backend from environment configuration with a static fallback.
package credentials

import "context"

// Provider resolves a credential pair, possibly refreshing it from a
// backing store on every call (implementations are expected to cache).
type Provider interface {
	Credentials(ctx context.Context) (id, secret string, err error)
}

// Static wraps a fixed id/secret pair supplied directly by config.
type Static struct {
	ID     string
	Secret string
}

// Credentials always returns the fixed pair; it never fails.
func (s Static) Credentials(ctx context.Context) (string, string, error) {
	return s.ID, s.Secret, nil
}

// Config selects and configures a Provider backend.
type Config struct {
	// Static pair, used when no 1Password backend is configured.
	AccessKeyID     string
	AccessKeySecret string

	// 1Password Connect backend, used when Host and Token are both set.
	OnePassword OnePasswordConfig
}

// NewProvider builds a Provider from cfg: a 1Password-backed Provider when
// OnePassword.Host and OnePassword.Token are both set, otherwise a Static
// provider wrapping the configured access key pair.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.OnePassword.Host != "" && cfg.OnePassword.Token != "" {
		return NewOnePassword(cfg.OnePassword)
	}
	return Static{ID: cfg.AccessKeyID, Secret: cfg.AccessKeySecret}, nil
}
