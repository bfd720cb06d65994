package federation

import (
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/teamo-dev/teamo/core"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// googleProfile is the subset of Google's OpenID userinfo response we use.
type googleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// NewGoogle configures Google as a federated identity provider.
func NewGoogle(clientID, clientSecret, callbackURL string) *Provider {
	return &Provider{
		name: core.ProviderGoogle,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: googleUserInfoURL,
		normalize:   normalizeGoogle,
	}
}

// normalizeGoogle maps a Google userinfo payload to a NormalizedIdentity.
// "sub" is Google's stable subject identifier; without it there is nothing to
// dedup on, so the login is aborted before any account is touched.
func normalizeGoogle(raw []byte) (*core.NormalizedIdentity, error) {
	var profile googleProfile
	if err := decode(core.ProviderGoogle, raw, &profile); err != nil {
		return nil, err
	}

	if profile.Sub == "" {
		return nil, fmt.Errorf("google profile missing sub: %w", core.ErrIdentityIncomplete)
	}

	identity := &core.NormalizedIdentity{
		Provider:   core.ProviderGoogle,
		ProviderID: profile.Sub,
		Email:      core.NormalizeEmail(profile.Email),
		Name:       profile.Name,
	}
	if profile.Picture != "" {
		identity.AvatarURL = &profile.Picture
	}
	return identity, nil
}
