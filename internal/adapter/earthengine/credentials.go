package earthengine

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
)

// Scope grants access to the Earth Engine REST API.
const Scope = "https://www.googleapis.com/auth/earthengine"

// Credentials identify the service account used to call the remote service.
type Credentials struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	ProjectID   string `json:"project_id"`
}

// LoadCredentials reads a service-account key file when path is set, otherwise it
// uses the email and PEM private key given directly. Literal "\n" sequences in the
// key are unescaped, as secret stores often flatten them.
func LoadCredentials(path, email, privateKey string) (Credentials, error) {
	var creds Credentials
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Credentials{}, &domain.InitializationError{Reason: "read credentials file", Err: err}
		}
		if err := json.Unmarshal(data, &creds); err != nil {
			return Credentials{}, &domain.InitializationError{Reason: "parse credentials file", Err: err}
		}
	} else {
		creds = Credentials{ClientEmail: email, PrivateKey: privateKey}
	}

	creds.ClientEmail = strings.TrimSpace(creds.ClientEmail)
	creds.PrivateKey = strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")

	if err := creds.validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

func (c Credentials) validate() error {
	if c.ClientEmail == "" {
		return &domain.InitializationError{Reason: "service account email is not set"}
	}
	if strings.TrimSpace(c.PrivateKey) == "" {
		return &domain.InitializationError{Reason: "private key is not set"}
	}
	if block, _ := pem.Decode([]byte(c.PrivateKey)); block == nil {
		return &domain.InitializationError{Reason: "private key", Err: errors.New("not PEM encoded")}
	}
	return nil
}

// TokenSource exchanges a signed JWT for OAuth2 access tokens. Tokens are cached and
// refreshed by the returned source.
func (c Credentials) TokenSource(ctx context.Context, tokenURL string) oauth2.TokenSource {
	conf := &jwt.Config{
		Email:      c.ClientEmail,
		PrivateKey: []byte(c.PrivateKey),
		Scopes:     []string{Scope},
		TokenURL:   tokenURL,
	}
	return conf.TokenSource(ctx)
}
