package remote

import (
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/NicolasDP/git/internal/config"
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

// tokenUsername is sent with token auth; hosting services ignore it but
// require it to be non-empty.
const tokenUsername = "x-access-token"

// AuthMethod returns the go-git credentials for cfg, nil for no auth.
func AuthMethod(cfg *config.AuthConfig) (transport.AuthMethod, error) {
	if cfg.IsZero() {
		return nil, nil
	}
	switch cfg.Type {
	case config.AuthTypeToken:
		if cfg.Token == "" {
			return nil, ferrors.ConfigError("token authentication requires a token").Build()
		}
		return &http.BasicAuth{Username: tokenUsername, Password: cfg.Token}, nil
	case config.AuthTypeBasic:
		if cfg.Username == "" {
			return nil, ferrors.ConfigError("basic authentication requires a username").Build()
		}
		return &http.BasicAuth{Username: cfg.Username, Password: cfg.Password}, nil
	default:
		return nil, ferrors.ConfigError("unsupported auth type").WithContext("type", string(cfg.Type)).Build()
	}
}
