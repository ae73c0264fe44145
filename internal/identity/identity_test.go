package identity

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

type fakeUsers struct {
	users map[int64]domain.User
	err   error
	calls int
}

func (f *fakeUsers) Lookup(_ context.Context, id int64) (domain.User, error) {
	f.calls++
	if f.err != nil {
		return domain.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, errors.NewNotFoundError("user", "x")
	}
	return u, nil
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[int64]domain.User{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "root", IsAdmin: true},
	}}
}

func TestMetaKey(t *testing.T) {
	assert.Equal(t, "HTTP_X_USER_ID", MetaKey("X-User-Id"))
	assert.Equal(t, "HTTP_X_USER_ID", MetaKey("x-user-id"))
	assert.Equal(t, "HTTP_AUTHORIZATION", MetaKey("Authorization"))
}

func TestHeaderMap(t *testing.T) {
	h := NewHeaderMap(map[string]string{"x-user-id": "7"})
	assert.Equal(t, "7", h.Header("X-USER-ID"))
	assert.Equal(t, "7", h.Meta("HTTP_X_USER_ID"))
	assert.Equal(t, "", h.Meta("HTTP_OTHER"))
}

// metaOnly exposes the id only through the normalized server variable.
type metaOnly map[string]string

func (m metaOnly) Header(string) string   { return "" }
func (m metaOnly) Meta(key string) string { return m[key] }

func TestHeaderResolver_Resolve(t *testing.T) {
	tests := []struct {
		name          string
		request       Request
		authenticated bool
		userID        int64
	}{
		{"valid id", NewHeaderMap(map[string]string{"X-User-Id": "1"}), true, 1},
		{"header name is case-insensitive", NewHeaderMap(map[string]string{"x-user-id": "2"}), true, 2},
		{"surrounding whitespace", NewHeaderMap(map[string]string{"X-User-Id": " 1 "}), true, 1},
		{"normalized fallback", metaOnly{"HTTP_X_USER_ID": "1"}, true, 1},
		{"missing header", NewHeaderMap(nil), false, 0},
		{"empty header", NewHeaderMap(map[string]string{"X-User-Id": ""}), false, 0},
		{"not an integer", NewHeaderMap(map[string]string{"X-User-Id": "alice"}), false, 0},
		{"float", NewHeaderMap(map[string]string{"X-User-Id": "1.0"}), false, 0},
		{"unknown user", NewHeaderMap(map[string]string{"X-User-Id": "99"}), false, 0},
	}

	resolver := NewHeaderResolver("", newFakeUsers(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := resolver.Resolve(context.Background(), tt.request)
			assert.Equal(t, tt.authenticated, p.IsAuthenticated())
			if tt.authenticated {
				id, _ := p.UserID()
				assert.Equal(t, tt.userID, id)
			}
		})
	}
}

func TestHeaderResolver_AdminFlagComesFromStore(t *testing.T) {
	resolver := NewHeaderResolver(DefaultHeader, newFakeUsers(), nil)

	assert.True(t, resolver.Resolve(context.Background(), NewHeaderMap(map[string]string{"X-User-Id": "2"})).IsAdmin())
	assert.False(t, resolver.Resolve(context.Background(), NewHeaderMap(map[string]string{"X-User-Id": "1"})).IsAdmin())
}

func TestHeaderResolver_LookupFailureIsAnonymous(t *testing.T) {
	users := &fakeUsers{err: stderrors.New("database is locked")}
	resolver := NewHeaderResolver(DefaultHeader, users, nil)

	p := resolver.Resolve(context.Background(), NewHeaderMap(map[string]string{"X-User-Id": "1"}))
	assert.False(t, p.IsAuthenticated())
	assert.Equal(t, 1, users.calls)
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func TestJWTResolver_Resolve(t *testing.T) {
	const secret = "test-secret"
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   "2",
		Issuer:    "tasks",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	tests := []struct {
		name          string
		authorization string
		authenticated bool
	}{
		{"valid token", "Bearer " + signToken(t, secret, valid), true},
		{"wrong secret", "Bearer " + signToken(t, "other", valid), false},
		{"expired", "Bearer " + signToken(t, secret, jwt.RegisteredClaims{
			Subject: "2", Issuer: "tasks", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		}), false},
		{"wrong issuer", "Bearer " + signToken(t, secret, jwt.RegisteredClaims{
			Subject: "2", Issuer: "elsewhere", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}), false},
		{"non-numeric subject", "Bearer " + signToken(t, secret, jwt.RegisteredClaims{
			Subject: "root", Issuer: "tasks", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}), false},
		{"missing scheme", signToken(t, secret, valid), false},
		{"garbage", "Bearer not.a.token", false},
		{"absent", "", false},
	}

	resolver := NewJWTResolver(secret, "tasks", newFakeUsers(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.authorization != "" {
				headers["Authorization"] = tt.authorization
			}
			p := resolver.Resolve(context.Background(), NewHeaderMap(headers))
			assert.Equal(t, tt.authenticated, p.IsAuthenticated())
			if tt.authenticated {
				assert.True(t, p.IsAdmin())
			}
		})
	}
}
