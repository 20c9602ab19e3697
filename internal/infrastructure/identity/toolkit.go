package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/internal/domain/repositories"
	"blip.dashboard/pkg/jwt"
	"blip.dashboard/pkg/logger"
)

const (
	DefaultBaseURL  = "https://identitytoolkit.googleapis.com/v1"
	DefaultTokenURL = "https://securetoken.googleapis.com/v1/token"
)

// Doer executes HTTP requests.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config configures the Identity Toolkit client.
type Config struct {
	APIKey   string
	BaseURL  string
	TokenURL string
}

var timeNow = time.Now

// Toolkit is an IdentityProvider backed by the Identity Toolkit REST API.
// The signed-in user lives in memory only.
type Toolkit struct {
	cfg  Config
	http Doer

	mu           sync.Mutex
	initialized  bool
	user         *repositories.ProviderUser
	refreshToken string
	listeners    map[int]repositories.AuthStateListener
	nextID       int
}

func NewToolkit(cfg Config, doer Doer) *Toolkit {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Toolkit{cfg: cfg, http: doer, listeners: make(map[int]repositories.AuthStateListener)}
}

// Init marks the provider initialized and delivers the first auth-state
// callback to every listener registered so far.
func (t *Toolkit) Init(ctx context.Context) {
	t.mu.Lock()
	if t.initialized {
		t.mu.Unlock()
		return
	}
	t.initialized = true
	t.mu.Unlock()

	logger.Debug(ctx, "Identity provider initialized")
	t.notify()
}

// OnAuthStateChanged registers l. Once initialized, l is called right away
// with the current user.
func (t *Toolkit) OnAuthStateChanged(l repositories.AuthStateListener) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = l
	ready := t.initialized
	user := copyUser(t.user)
	t.mu.Unlock()

	if ready {
		l(user)
	}
	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

func (t *Toolkit) CurrentUser() *repositories.ProviderUser {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyUser(t.user)
}

type tokenResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

func (t *Toolkit) SignIn(ctx context.Context, email, password string) (*repositories.ProviderUser, error) {
	return t.authenticate(ctx, "accounts:signInWithPassword", email, password)
}

func (t *Toolkit) SignUp(ctx context.Context, email, password string) (*repositories.ProviderUser, error) {
	return t.authenticate(ctx, "accounts:signUp", email, password)
}

func (t *Toolkit) authenticate(ctx context.Context, method, email, password string) (*repositories.ProviderUser, error) {
	var out tokenResponse
	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	if err := t.post(ctx, t.endpoint(method), body, &out); err != nil {
		return nil, err
	}
	user, err := userFromToken(out.IDToken)
	if err != nil {
		return nil, domainerrors.Provider("INVALID_ID_TOKEN", err)
	}

	t.mu.Lock()
	t.user = user
	t.refreshToken = out.RefreshToken
	t.mu.Unlock()
	t.notify()
	return copyUser(user), nil
}

// Reload re-reads the account so emailVerified reflects the provider's
// current state rather than the ID token's snapshot.
func (t *Toolkit) Reload(ctx context.Context) (*repositories.ProviderUser, error) {
	idToken, err := t.freshIDToken(ctx)
	if err != nil || idToken == "" {
		return nil, err
	}

	var out struct {
		Users []struct {
			LocalID       string `json:"localId"`
			Email         string `json:"email"`
			EmailVerified bool   `json:"emailVerified"`
		} `json:"users"`
	}
	if err := t.post(ctx, t.endpoint("accounts:lookup"), map[string]string{"idToken": idToken}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		t.SignOut()
		return nil, nil
	}

	t.mu.Lock()
	if t.user == nil {
		t.mu.Unlock()
		return nil, nil
	}
	t.user.UID = out.Users[0].LocalID
	t.user.Email = out.Users[0].Email
	t.user.EmailVerified = out.Users[0].EmailVerified
	user := copyUser(t.user)
	t.mu.Unlock()
	return user, nil
}

func (t *Toolkit) SignOut() {
	t.mu.Lock()
	wasSignedIn := t.user != nil
	t.user = nil
	t.refreshToken = ""
	t.mu.Unlock()
	if wasSignedIn {
		t.notify()
	}
}

// SendEmailVerification sends a verification link to the signed-in user.
func (t *Toolkit) SendEmailVerification(ctx context.Context) error {
	idToken, err := t.freshIDToken(ctx)
	if err != nil {
		return err
	}
	if idToken == "" {
		return domainerrors.Unauthorized(domainerrors.MsgUnauthorized)
	}
	body := map[string]string{"requestType": "VERIFY_EMAIL", "idToken": idToken}
	return t.post(ctx, t.endpoint("accounts:sendOobCode"), body, nil)
}

func (t *Toolkit) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	body := map[string]string{"oobCode": code, "newPassword": newPassword}
	return t.post(ctx, t.endpoint("accounts:resetPassword"), body, nil)
}

// freshIDToken returns the current ID token, exchanging the refresh token
// when it is about to expire. Empty means signed out.
func (t *Toolkit) freshIDToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	if t.user == nil {
		t.mu.Unlock()
		return "", nil
	}
	idToken, refresh, expiresAt := t.user.IDToken, t.refreshToken, t.user.ExpiresAt
	t.mu.Unlock()

	if expiresAt.IsZero() || expiresAt.After(timeNow().Add(time.Minute)) || refresh == "" {
		return idToken, nil
	}

	form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {refresh}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.TokenURL+"?key="+url.QueryEscape(t.cfg.APIKey), strings.NewReader(form.Encode()))
	if err != nil {
		return "", domainerrors.InternalError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := t.send(ctx, req, &out); err != nil {
		return "", err
	}
	user, err := userFromToken(out.IDToken)
	if err != nil {
		return "", domainerrors.Provider("INVALID_ID_TOKEN", err)
	}

	t.mu.Lock()
	if t.user != nil {
		// keep the last looked-up verification flag; the new token may predate it
		user.EmailVerified = user.EmailVerified || t.user.EmailVerified
		t.user = user
		t.refreshToken = out.RefreshToken
	}
	t.mu.Unlock()
	return out.IDToken, nil
}

func (t *Toolkit) endpoint(method string) string {
	return t.cfg.BaseURL + "/" + method + "?key=" + url.QueryEscape(t.cfg.APIKey)
}

func (t *Toolkit) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return domainerrors.InternalError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domainerrors.InternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.send(ctx, req, out)
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *Toolkit) send(ctx context.Context, req *http.Request, out any) error {
	resp, err := t.http.Do(ctx, req)
	if err != nil {
		logger.Warn(ctx, "Identity provider request failed", zap.Error(err))
		return domainerrors.Network(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		var env errorEnvelope
		_ = json.Unmarshal(raw, &env)
		code := providerCode(env.Error.Message)
		if code == "" && resp.StatusCode >= 500 {
			return domainerrors.Network(fmt.Errorf("identity provider status %d", resp.StatusCode))
		}
		return domainerrors.Provider(code, fmt.Errorf("identity provider status %d: %s", resp.StatusCode, env.Error.Message))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return domainerrors.Provider("", fmt.Errorf("decode identity response: %w", err))
	}
	return nil
}

// providerCode strips the detail the provider appends to its error codes,
// e.g. "WEAK_PASSWORD : Password should be at least 6 characters".
func providerCode(message string) string {
	code, _, _ := strings.Cut(message, " ")
	return strings.TrimSpace(code)
}

func (t *Toolkit) notify() {
	t.mu.Lock()
	user := t.user
	ls := make([]repositories.AuthStateListener, 0, len(t.listeners))
	for _, l := range t.listeners {
		ls = append(ls, l)
	}
	t.mu.Unlock()

	for _, l := range ls {
		l(copyUser(user))
	}
}

func userFromToken(idToken string) (*repositories.ProviderUser, error) {
	claims, err := jwt.DecodeIDToken(idToken, timeNow())
	if err != nil {
		return nil, err
	}
	user := &repositories.ProviderUser{
		UID:           claims.UserID(),
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		IDToken:       idToken,
	}
	if claims.ExpiresAt != nil {
		user.ExpiresAt = claims.ExpiresAt.Time
	}
	return user, nil
}

func copyUser(u *repositories.ProviderUser) *repositories.ProviderUser {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
