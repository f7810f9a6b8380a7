package credentials

import (
	"context"
	"fmt"
	"sync"

	"github.com/1Password/connect-sdk-go/connect"
)

// OnePasswordConfig configures the 1Password Connect backend.
type OnePasswordConfig struct {
	Host     string // OP_CONNECT_HOST
	Token    string // OP_CONNECT_TOKEN
	VaultID  string // OP_VAULT_ID
	ItemName string // title of the item holding the credential fields
}

// fieldAccessKeyID and fieldAccessKeySecret name the 1Password item fields
// this provider reads the credential pair from.
const (
	fieldAccessKeyID     = "access_key_id"
	fieldAccessKeySecret = "access_key_secret"
)

// OnePassword resolves the credential pair from a named item in a 1Password
// Connect vault, caching the result until Refresh is called.
type OnePassword struct {
	client   connect.Client
	vaultID  string
	itemName string

	mu     sync.RWMutex
	id     string
	secret string
	cached bool
}

// NewOnePassword creates a 1Password-backed Provider.
func NewOnePassword(cfg OnePasswordConfig) (*OnePassword, error) {
	if cfg.Host == "" || cfg.Token == "" || cfg.VaultID == "" {
		return nil, fmt.Errorf("credentials: 1password configuration incomplete: host, token, and vault_id are required")
	}
	itemName := cfg.ItemName
	if itemName == "" {
		itemName = "logback-oss-appender"
	}
	return &OnePassword{
		client:   connect.NewClientWithUserAgent(cfg.Host, cfg.Token, "logback-oss-appender"),
		vaultID:  cfg.VaultID,
		itemName: itemName,
	}, nil
}

// Credentials returns the cached pair, fetching it from the vault on first
// use or after Refresh.
func (p *OnePassword) Credentials(ctx context.Context) (string, string, error) {
	p.mu.RLock()
	if p.cached {
		id, secret := p.id, p.secret
		p.mu.RUnlock()
		return id, secret, nil
	}
	p.mu.RUnlock()

	id, secret, err := p.fetch()
	if err != nil {
		return "", "", err
	}

	p.mu.Lock()
	p.id, p.secret, p.cached = id, secret, true
	p.mu.Unlock()

	return id, secret, nil
}

// Refresh drops the cached pair so the next Credentials call re-fetches it.
func (p *OnePassword) Refresh() {
	p.mu.Lock()
	p.cached = false
	p.mu.Unlock()
}

func (p *OnePassword) fetch() (string, string, error) {
	items, err := p.client.GetItemsByTitle(p.itemName, p.vaultID)
	if err != nil {
		return "", "", fmt.Errorf("credentials: listing 1password items: %w", err)
	}
	if len(items) == 0 {
		return "", "", fmt.Errorf("credentials: no 1password item titled %q in vault %q", p.itemName, p.vaultID)
	}

	item, err := p.client.GetItem(items[0].ID, p.vaultID)
	if err != nil {
		return "", "", fmt.Errorf("credentials: getting 1password item: %w", err)
	}

	var id, secret string
	for _, field := range item.Fields {
		switch field.ID {
		case fieldAccessKeyID:
			id = field.Value
		case fieldAccessKeySecret:
			secret = field.Value
		}
	}
	if id == "" || secret == "" {
		return "", "", fmt.Errorf("credentials: 1password item %q missing %s/%s fields", p.itemName, fieldAccessKeyID, fieldAccessKeySecret)
	}
	return id, secret, nil
}
