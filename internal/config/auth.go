package config

import "github.com/NicolasDP/git/internal/foundation/normalization"

// AuthType enumerates supported authentication methods for remotes.
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
)

// AuthConfig holds credentials for HTTPS remotes.
type AuthConfig struct {
	Type     AuthType `yaml:"type"` // token|basic|none
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty"`
}

// IsZero reports whether no auth method is specified.
func (a *AuthConfig) IsZero() bool { return a == nil || a.Type == "" || a.Type == AuthTypeNone }

var authTypes = normalization.New("auth type", map[string]AuthType{
	"none":  AuthTypeNone,
	"token": AuthTypeToken,
	"basic": AuthTypeBasic,
}, "")

// NormalizeAuthType maps user input to an AuthType, empty when unknown.
func NormalizeAuthType(raw string) AuthType {
	return authTypes.Normalize(raw)
}
