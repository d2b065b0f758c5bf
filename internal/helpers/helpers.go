package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
		Roles     []string `json:"roles,omitempty"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenValidator verifies Supabase access tokens against a key source.
type TokenValidator struct {
	keyfunc jwt.Keyfunc
	stop    func()
}

// JWKSURL is the Supabase auth endpoint that publishes the project's signing keys.
func JWKSURL(supabaseURL string) string {
	return strings.TrimRight(supabaseURL, "/") + "/auth/v1/.well-known/jwks.json"
}

// NewJWKSValidator fetches the key set once and refreshes it hourly in the background.
func NewJWKSValidator(ctx context.Context, jwksURL string, logger *slog.Logger) (*TokenValidator, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url not set")
	}
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("JWKS refresh failed", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}
	return &TokenValidator{keyfunc: jwks.Keyfunc, stop: jwks.EndBackground}, nil
}

// NewKeyfuncValidator validates with a caller-provided key lookup, e.g. a shared HMAC secret.
func NewKeyfuncValidator(kf jwt.Keyfunc) *TokenValidator {
	return &TokenValidator{keyfunc: kf}
}

func (v *TokenValidator) ValidateToken(tokenStr string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, v.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

func (v *TokenValidator) Close() {
	if v.stop != nil {
		v.stop()
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug lowercases s and joins its alphanumeric runs with hyphens:
// "Funding and Investment" becomes "funding-and-investment".
func GenerateSlug(s string) string {
	s = strings.ToLower(StringTrim(s))
	s = strings.ReplaceAll(s, "&", " and ")
	return strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
}

// StringTrim trims s and collapses internal whitespace runs to one space.
func StringTrim(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
