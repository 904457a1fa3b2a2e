package session

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-community-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-community-go/internal/user/entity"
)

type userLookup interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// Authenticator resolves an Authorization header into the current user.
type Authenticator struct {
	tokens *Issuer
	users  userLookup
	logger *zap.SugaredLogger
}

func NewAuthenticator(tokens *Issuer, users userLookup, logger *zap.SugaredLogger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// Authenticate returns the signed-in user without its credential, or nil for
// an anonymous request. It never fails: every problem resolves to anonymous.
func (a *Authenticator) Authenticate(ctx context.Context, header string) *entity.User {
	token, ok := bearerToken(header)
	if !ok {
		return nil
	}
	userID, ok := a.tokens.Verify(token)
	if !ok {
		a.logger.Debugw("rejected bearer token")
		return nil
	}
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.logger.Warnw("load token subject", "user_id", userID, "err", err)
		}
		return nil
	}
	return u.Sanitized()
}

// bearerToken expects exactly "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type contextKey struct{}

// WithUser attaches u to ctx. A nil u leaves the request anonymous.
func WithUser(ctx context.Context, u *entity.User) context.Context {
	if u == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFrom returns the user resolved for this request, or nil.
func UserFrom(ctx context.Context) *entity.User {
	u, _ := ctx.Value(contextKey{}).(*entity.User)
	return u
}
