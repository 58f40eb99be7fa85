package earthengine

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
)

func testPrivateKey(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func TestLoadCredentials_FromFile(t *testing.T) {
	key := testPrivateKey(t)
	data, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"client_email": "sa@climate-sandbox.iam.gserviceaccount.com",
		"private_key":  key,
		"project_id":   "climate-sandbox",
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	creds, err := LoadCredentials(path, "ignored@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "sa@climate-sandbox.iam.gserviceaccount.com", creds.ClientEmail)
	assert.Equal(t, "climate-sandbox", creds.ProjectID)
	assert.Equal(t, key, creds.PrivateKey)
}

func TestLoadCredentials_DirectWithEscapedNewlines(t *testing.T) {
	key := testPrivateKey(t)
	flat := strings.ReplaceAll(key, "\n", `\n`)

	creds, err := LoadCredentials("", " sa@example.iam.gserviceaccount.com ", flat)
	require.NoError(t, err)
	assert.Equal(t, "sa@example.iam.gserviceaccount.com", creds.ClientEmail)
	assert.Equal(t, key, creds.PrivateKey)
	assert.Empty(t, creds.ProjectID)
}

func TestLoadCredentials_Errors(t *testing.T) {
	badJSON := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte("{"), 0o600))

	tests := []struct {
		name   string
		path   string
		email  string
		key    string
		reason string
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.json"), reason: "read credentials file"},
		{name: "malformed file", path: badJSON, reason: "parse credentials file"},
		{name: "missing email", key: "x", reason: "service account email is not set"},
		{name: "missing key", email: "sa@example.com", reason: "private key is not set"},
		{name: "not pem", email: "sa@example.com", key: "not-a-key", reason: "private key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCredentials(tt.path, tt.email, tt.key)
			var initErr *domain.InitializationError
			require.ErrorAs(t, err, &initErr)
			assert.Equal(t, tt.reason, initErr.Reason)
		})
	}
}
