// Package auth manages platform API tokens: loading the active token,
// activating a downloaded token file, and building request credentials.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// TokenEnvVar names the environment variable that, when set, points at
// the token file to use instead of the activated token.
const TokenEnvVar = "VISIONGRID_API_TOKEN"

// Common errors returned when resolving tokens.
var (
	// ErrNoToken is returned when no active token can be found.
	ErrNoToken = errors.New("no API token found")

	// ErrInvalidToken is returned when a token file cannot be parsed.
	ErrInvalidToken = errors.New("invalid API token")
)

// tokenWire is the JSON wire shape of a platform token file.
type tokenWire struct {
	AccessToken struct {
		TokenID    string `json:"token_id"`
		CreatedAt  string `json:"created_at"`
		PrivateKey string `json:"private_key"`
	} `json:"access_token"`
}

// Token is an API authentication token.
type Token struct {
	// ID is the token identifier assigned by the platform.
	ID string

	// CreatedAt is the token creation date, as reported by the platform.
	CreatedAt string

	privateKey string
	raw        []byte
}

// ParseToken parses a token from its JSON file contents.
func ParseToken(data []byte) (*Token, error) {
	var wire tokenWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if wire.AccessToken.TokenID == "" || wire.AccessToken.PrivateKey == "" {
		return nil, fmt.Errorf("%w: missing token_id or private_key", ErrInvalidToken)
	}
	return &Token{
		ID:         wire.AccessToken.TokenID,
		CreatedAt:  wire.AccessToken.CreatedAt,
		privateKey: wire.AccessToken.PrivateKey,
		raw:        data,
	}, nil
}

// LoadTokenFile loads a token from the given JSON file.
func LoadTokenFile(path string) (*Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file %q: %w", path, err)
	}
	return ParseToken(data)
}

// LoadToken loads the active token. The VISIONGRID_API_TOKEN
// environment variable is checked first; if unset, the activated token
// at TokenPath() is used.
func LoadToken() (*Token, error) {
	path, err := ActiveTokenPath()
	if err != nil {
		return nil, err
	}
	return LoadTokenFile(path)
}

// ActiveTokenPath resolves the path of the active token file. Returns
// ErrNoToken if no token is configured.
func ActiveTokenPath() (string, error) {
	if path := os.Getenv(TokenEnvVar); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s=%q", ErrNoToken, TokenEnvVar, path)
		}
		return path, nil
	}

	path, err := TokenPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", ErrNoToken
	}
	return path, nil
}

// TokenPath returns the activated token location,
// ~/.visiongrid/api-token.json.
func TokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".visiongrid", "api-token.json"), nil
}

// ActivateToken copies the given token file into the activated token
// location. Subsequent clients authenticate with this token. The file
// is validated before activation.
func ActivateToken(path string) error {
	token, err := LoadTokenFile(path)
	if err != nil {
		return err
	}

	dst, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := copyFile(path, dst); err != nil {
		return fmt.Errorf("activate token: %w", err)
	}

	log.Info().
		Str("token_id", token.ID).
		Str("path", dst).
		Msg("Token activated")
	return nil
}

// DeactivateToken deletes the activated token, if any.
func DeactivateToken() error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			log.Info().Msg("No token to deactivate")
			return nil
		}
		return fmt.Errorf("deactivate token: %w", err)
	}
	log.Info().Str("path", path).Msg("Token deactivated")
	return nil
}

// Authorize sets the Authorization header on the given request.
func (t *Token) Authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+t.privateKey)
}

// String renders the raw token JSON.
func (t *Token) String() string {
	return string(t.raw)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
