package identity

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// HeaderResolver trusts an upstream-asserted numeric user id header.
type HeaderResolver struct {
	header string
	users  UserLookup
	logger *slog.Logger
}

var _ Resolver = (*HeaderResolver)(nil)

// NewHeaderResolver creates a resolver reading header (DefaultHeader when
// empty) and looking ids up in users.
func NewHeaderResolver(header string, users UserLookup, logger *slog.Logger) *HeaderResolver {
	if header == "" {
		header = DefaultHeader
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HeaderResolver{header: header, users: users, logger: logger}
}

// Resolve returns the principal for the asserted user id, or anonymous if
// the header is missing, not an integer or names no stored user.
func (r *HeaderResolver) Resolve(ctx context.Context, req Request) domain.Principal {
	raw := req.Header(r.header)
	if raw == "" {
		raw = req.Meta(MetaKey(r.header))
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Anonymous()
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.Anonymous()
	}
	return lookupPrincipal(ctx, r.users, r.logger, id)
}

func lookupPrincipal(ctx context.Context, users UserLookup, logger *slog.Logger, id int64) domain.Principal {
	user, err := users.Lookup(ctx, id)
	if err != nil {
		if !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			logger.WarnContext(ctx, "identity lookup failed, continuing as anonymous", "user_id", id, "error", err)
		}
		return domain.Anonymous()
	}
	return domain.Authenticated(user)
}
