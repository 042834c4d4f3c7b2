// Package session verifies the dashboard caller from inbound request headers.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/router-for-me/GraphQLTester/internal/domain"
	"github.com/router-for-me/GraphQLTester/internal/security"
)

// DefaultHeader carries the dashboard user token.
const DefaultHeader = "X-User-Token"

// Verification errors.
var (
	// ErrMissingToken indicates no session token was presented.
	ErrMissingToken = errors.New("session: missing token")
	// ErrInvalidToken indicates the token failed verification.
	ErrInvalidToken = errors.New("session: invalid token")
	// ErrExpiredToken indicates the token is past its expiry.
	ErrExpiredToken = errors.New("session: token expired")
)

// Verifier resolves the caller identity from request headers.
type Verifier interface {
	Verify(ctx context.Context, header http.Header) (domain.Identity, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, header http.Header) (domain.Identity, error)

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, header http.Header) (domain.Identity, error) {
	return f(ctx, header)
}

// JWTVerifier accepts HS256 session tokens.
type JWTVerifier struct {
	secret string
	header string
}

// NewJWTVerifier constructs a verifier; tokenHeader falls back to DefaultHeader.
func NewJWTVerifier(secret, tokenHeader string) *JWTVerifier {
	if strings.TrimSpace(tokenHeader) == "" {
		tokenHeader = DefaultHeader
	}
	return &JWTVerifier{secret: secret, header: tokenHeader}
}

// Verify reads the token from the configured header, then from
// "Authorization: Bearer", and validates it.
func (v *JWTVerifier) Verify(_ context.Context, header http.Header) (domain.Identity, error) {
	token := tokenFromHeader(header, v.header)
	if token == "" {
		return domain.Identity{}, ErrMissingToken
	}
	claims, errParse := security.ParseToken(v.secret, token)
	if errParse != nil {
		if errors.Is(errParse, security.ErrExpiredToken) {
			return domain.Identity{}, ErrExpiredToken
		}
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{UserID: claims.UserID, CompanyID: claims.CompanyID}, nil
}

func tokenFromHeader(header http.Header, name string) string {
	if header == nil {
		return ""
	}
	if token := strings.TrimSpace(header.Get(name)); token != "" {
		return token
	}
	authHeader := strings.TrimSpace(header.Get("Authorization"))
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}
