package federation

import (
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/teamo-dev/teamo/core"
)

const githubUserInfoURL = "https://api.github.com/user"

// githubProfile is the subset of GitHub's /user response we use.
type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// NewGitHub configures GitHub as a federated identity provider.
func NewGitHub(clientID, clientSecret, callbackURL string) *Provider {
	return &Provider{
		name: core.ProviderGitHub,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     endpoints.GitHub,
			Scopes:       []string{"read:user", "user:email"},
		},
		userInfoURL: githubUserInfoURL,
		normalize:   normalizeGitHub,
	}
}

// normalizeGitHub maps a GitHub /user payload to a NormalizedIdentity.
// GitHub's numeric id is the stable subject; the login name can be renamed
// and must not be used for dedup.
func normalizeGitHub(raw []byte) (*core.NormalizedIdentity, error) {
	var profile githubProfile
	if err := decode(core.ProviderGitHub, raw, &profile); err != nil {
		return nil, err
	}

	if profile.ID == 0 {
		return nil, fmt.Errorf("github profile missing id: %w", core.ErrIdentityIncomplete)
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	identity := &core.NormalizedIdentity{
		Provider:   core.ProviderGitHub,
		ProviderID: strconv.FormatInt(profile.ID, 10),
		Email:      core.NormalizeEmail(profile.Email),
		Name:       name,
	}
	if profile.AvatarURL != "" {
		identity.AvatarURL = &profile.AvatarURL
	}
	return identity, nil
}
