package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/stockroom/pkg/rbac"
)

// ErrInvalidToken is returned by a Verifier when the presented token does
// not resolve to an authenticated identity.
var ErrInvalidToken = errors.New("invalid or unknown token")

// Verifier resolves an opaque bearer token to authenticated claims. The
// production deployment plugs in its identity provider here; tests and small
// installations use StaticVerifier.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// StaticVerifier resolves tokens from a fixed in-memory table.
type StaticVerifier struct {
	tokens map[string]Claims
}

// NewStaticVerifier builds a verifier from a token table.
func NewStaticVerifier(tokens map[string]Claims) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

// ParseStaticTokens parses the STOCKROOM_AUTH_TOKENS format:
// "token=username:role" pairs separated by commas, e.g.
// "s3cret=alice:admin,letmein=bob:viewer". Unknown roles degrade to viewer.
func ParseStaticTokens(spec string) (*StaticVerifier, error) {
	tokens := make(map[string]Claims)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, identity, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed token entry %q: want token=username:role", pair)
		}
		username, role, ok := strings.Cut(identity, ":")
		if !ok || username == "" {
			return nil, fmt.Errorf("malformed identity %q: want username:role", identity)
		}
		tokens[token] = Claims{
			Username: username,
			Role:     rbac.ParseRole(role),
		}
	}
	if len(tokens) == 0 {
		return nil, errors.New("no auth tokens configured")
	}
	return &StaticVerifier{tokens: tokens}, nil
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(token string) (*Claims, error) {
	claims, ok := v.tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
