// Package federation normalizes external OAuth identities into the canonical
// shape the account linking service consumes. Providers are registered on an
// explicit Registry built at startup and passed to the server; there is no
// process-wide provider state.
package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"golang.org/x/oauth2"

	"github.com/teamo-dev/teamo/core"
)

// maxProfileBytes bounds how much of a userinfo response is read.
const maxProfileBytes = 1 << 20

// Provider is one configured OAuth identity source.
type Provider struct {
	name        string
	oauth       *oauth2.Config
	userInfoURL string
	normalize   func(raw []byte) (*core.NormalizedIdentity, error)
}

// Name returns the provider identifier used in routes and account rows.
func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL builds the provider's authorization redirect URL.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Identity completes the authorization-code flow: exchanges the code, fetches
// the provider profile, and normalizes it. It is a plain call returning a
// value or an error; no callback is involved.
func (p *Provider) Identity(ctx context.Context, code string) (*core.NormalizedIdentity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code with %s: %w", p.name, err)
	}

	raw, err := p.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	return p.normalize(raw)
}

func (p *Provider) fetchProfile(ctx context.Context, token *oauth2.Token) ([]byte, error) {
	client := p.oauth.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s profile: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s profile: unexpected status %d", p.name, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s profile: %w", p.name, err)
	}
	return raw, nil
}

// decode unmarshals a profile payload, wrapping failures uniformly.
func decode(provider string, raw []byte, into any) error {
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode %s profile: %w", provider, err)
	}
	return nil
}

// Registry holds every configured provider, keyed by name.
type Registry struct {
	providers map[string]*Provider
}

// NewRegistry builds a registry from the given providers. Nil entries are
// skipped so callers can pass conditionally-constructed providers directly.
func NewRegistry(providers ...*Provider) *Registry {
	r := &Registry{providers: make(map[string]*Provider)}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.name] = p
	}
	return r
}

// Provider looks up a provider by name.
func (r *Registry) Provider(name string) (*Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names lists registered provider names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
