package authn

import (
	"context"
	"time"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/domain/user"
	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

// Session is what a successful login returns.
type Session struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

type Service struct {
	users  user.Repository
	rec    audit.Recorder
	secret string
	expiry time.Duration
}

func NewService(users user.Repository, rec audit.Recorder, secret string, expiry time.Duration) *Service {
	return &Service{users: users, rec: rec, secret: secret, expiry: expiry}
}

// Login verifies credentials and issues a token. Unknown usernames, wrong
// passwords, and deactivated accounts all produce the same error so the
// response never reveals which accounts exist.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, domainerr.PreconditionFailed("Username and password are required")
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, domainerr.Unauthorized("Invalid credentials")
	}

	token, err := auth.SignToken(s.secret, u.ID, u.Username, s.expiry)
	if err != nil {
		return nil, domainerr.Unexpected("sign token", err)
	}

	if _, err := s.rec.Record(ctx, audit.Entry{
		Table:    "users",
		RecordID: u.ID,
		Action:   audit.ActionLogin,
		ActorID:  u.ID,
	}); err != nil {
		return nil, err
	}

	return &Session{Token: token, User: u}, nil
}

// Refresh issues a fresh token for an already-authenticated caller. The
// middleware has re-resolved the principal, so a deactivated account can
// never reach this point.
func (s *Service) Refresh(_ context.Context, p *auth.Principal) (string, error) {
	token, err := auth.SignToken(s.secret, p.UserID, p.Username, s.expiry)
	if err != nil {
		return "", domainerr.Unexpected("sign token", err)
	}
	return token, nil
}

// Logout only records the event. Tokens are stateless and stay valid until
// expiry; the audit trail is the point.
func (s *Service) Logout(ctx context.Context, actorID int64) error {
	_, err := s.rec.Record(ctx, audit.Entry{
		Table:    "users",
		RecordID: actorID,
		Action:   audit.ActionLogout,
		ActorID:  actorID,
	})
	return err
}
