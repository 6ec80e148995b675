package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/packfinderz-client/internal/store"
	"github.com/angelmondragon/packfinderz-client/internal/transport"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "current"

// Session is the at-most-one live auth session on this device. An
// empty bearer token means no session.
type Session struct {
	UserID string `json:"userId"`
	Token  string `json:"bearerToken"`
}

func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != ""
}

// Expired inspects the bearer token's exp claim without verifying the
// signature; verification is the server's job, this only pre-empts a
// guaranteed 401. Opaque tokens report not-expired.
func (s Session) Expired(now time.Time) bool {
	if !s.Valid() {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return false
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false
	}
	return expiry.Before(now)
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// authResponse tolerates the backend's two spellings of the user id
// and token fields.
type authResponse struct {
	UserID      string `json:"userId"`
	ID          string `json:"id"`
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
}

func (a authResponse) session() Session {
	userID := a.UserID
	if userID == "" {
		userID = a.ID
	}
	token := a.Token
	if token == "" {
		token = a.AccessToken
	}
	return Session{UserID: userID, Token: token}
}

// Manager owns the session lifecycle: created on login, registration,
// or OTP verification; destroyed on logout.
type Manager struct {
	store  *store.Store
	client *transport.Client
	logg   *logger.Logger
}

func NewManager(st *store.Store, client *transport.Client, logg *logger.Logger) (*Manager, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	if client == nil {
		return nil, fmt.Errorf("transport client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Manager{store: st, client: client, logg: logg}, nil
}

// Current returns the live session, or nil when none exists.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	var sess Session
	ok, err := m.store.GetJSON(ctx, store.NamespaceSession, sessionKey, &sess)
	if err != nil {
		return nil, err
	}
	if !ok || !sess.Valid() {
		return nil, nil
	}
	return &sess, nil
}

func (m *Manager) Login(ctx context.Context, creds Credentials) transport.Result[Session] {
	return m.authenticate(ctx, transport.PathLogin, creds)
}

func (m *Manager) Register(ctx context.Context, reg Registration) transport.Result[Session] {
	return m.authenticate(ctx, transport.PathRegister, reg)
}

// VerifyOTP exchanges a one-time code for a session.
func (m *Manager) VerifyOTP(ctx context.Context, phone, code string) transport.Result[Session] {
	return m.authenticate(ctx, transport.PathVerifyOTP, map[string]string{"phone": phone, "otp": code})
}

func (m *Manager) authenticate(ctx context.Context, path string, body any) transport.Result[Session] {
	result, err := transport.Execute[authResponse](ctx, m.client, transport.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
	if err != nil {
		return transport.Fail[Session](err)
	}

	sess := result.Data.session()
	if !sess.Valid() {
		return transport.Fail[Session](fmt.Errorf("auth response carried no token"))
	}
	if err := m.store.PutJSON(ctx, store.NamespaceSession, sessionKey, sess); err != nil {
		return transport.Fail[Session](err)
	}
	return transport.Ok(sess)
}

// BootstrapAdmin creates the first administrative account. The
// transport exempts this one path from bearer attachment, so it works
// before any session exists.
func (m *Manager) BootstrapAdmin(ctx context.Context, reg Registration) transport.Result[Session] {
	return m.authenticate(ctx, transport.PathAdminBootstrap, reg)
}

// Logout destroys the local session and per-user state. The remote
// call is best-effort; the device is signed out regardless.
func (m *Manager) Logout(ctx context.Context) error {
	if _, err := m.client.Do(ctx, transport.Request{Method: http.MethodPost, Path: transport.PathLogout}); err != nil {
		m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "remote logout failed, clearing local session anyway")
	}

	for _, namespace := range []string{store.NamespaceSession, store.NamespaceCheckout, store.NamespacePrefs} {
		if err := m.store.Clear(ctx, namespace); err != nil {
			return err
		}
	}
	return nil
}
