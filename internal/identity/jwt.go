package identity

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"task-tracker/internal/domain"
)

// JWTResolver verifies an HS256 bearer token and takes the user id from its
// subject claim. Token issuance happens elsewhere.
type JWTResolver struct {
	secret []byte
	issuer string
	users  UserLookup
	logger *slog.Logger
}

var _ Resolver = (*JWTResolver)(nil)

// NewJWTResolver creates a resolver for tokens signed with secret. A
// non-empty issuer must match the token's iss claim.
func NewJWTResolver(secret, issuer string, users UserLookup, logger *slog.Logger) *JWTResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &JWTResolver{secret: []byte(secret), issuer: issuer, users: users, logger: logger}
}

// Resolve returns anonymous for a missing, malformed, expired or badly
// signed token.
func (r *JWTResolver) Resolve(ctx context.Context, req Request) domain.Principal {
	auth := req.Header("Authorization")
	if auth == "" {
		auth = req.Meta(MetaKey("Authorization"))
	}
	token, ok := strings.CutPrefix(strings.TrimSpace(auth), "Bearer ")
	if !ok || token == "" {
		return domain.Anonymous()
	}

	subject, err := r.verify(token)
	if err != nil {
		r.logger.DebugContext(ctx, "rejected bearer token", "error", err)
		return domain.Anonymous()
	}

	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return domain.Anonymous()
	}
	return lookupPrincipal(ctx, r.users, r.logger, id)
}

func (r *JWTResolver) verify(token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}
