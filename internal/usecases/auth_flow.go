package usecases

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"blip.dashboard/internal/domain/entities"
	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/internal/domain/repositories"
	"blip.dashboard/pkg/logger"
)

// MsgSessionNotEstablished is shown when the backend accepted the credentials
// but the follow-up session read found no session.
const MsgSessionNotEstablished = "We could not start your session. Please check that cookies are enabled and try again."

// AuthFlow handles login, registration and password reset across the
// identity provider and the backend.
type AuthFlow struct {
	accounts repositories.AccountRepository
	provider repositories.IdentityProvider
	session  *SessionStore
	bridge   *IdentityBridge
}

// NewAuthFlow creates a new auth flow
func NewAuthFlow(
	accounts repositories.AccountRepository,
	provider repositories.IdentityProvider,
	session *SessionStore,
	bridge *IdentityBridge,
) *AuthFlow {
	return &AuthFlow{
		accounts: accounts,
		provider: provider,
		session:  session,
		bridge:   bridge,
	}
}

// Login signs in at the backend. When the backend still thinks the email is
// unverified but the provider already verified it, the confirmation is
// replayed and the backend login retried exactly once.
func (f *AuthFlow) Login(ctx context.Context, input entities.LoginInput) (*entities.User, error) {
	input.Email = normalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" {
		return nil, domainerrors.Validation("Email and password are required.")
	}

	user, err := f.accounts.Login(ctx, input)
	if err == nil {
		return f.establish(ctx, user)
	}
	if domainerrors.KindOf(err) != domainerrors.KindNotVerified {
		return nil, err
	}

	pu, perr := f.provider.SignIn(ctx, input.Email, input.Password)
	if perr != nil {
		logger.Warn(ctx, "Provider sign-in during login failed", zap.Error(perr))
		f.bridge.BeginPending(ctx, input.Email)
		return nil, err
	}
	if !pu.EmailVerified {
		f.bridge.BeginPending(ctx, input.Email)
		return nil, err
	}

	logger.Info(ctx, "Provider reports verified email, confirming with backend", zap.String("email", input.Email))
	if cerr := f.accounts.ConfirmEmailVerified(ctx, input.Email); cerr != nil {
		return nil, cerr
	}

	user, err = f.accounts.Login(ctx, input)
	if err != nil {
		return nil, err
	}
	return f.establish(ctx, user)
}

// establish installs the login response, then lets the backend's session
// cookie have the final word.
func (f *AuthFlow) establish(ctx context.Context, user *entities.User) (*entities.User, error) {
	f.session.Login(user)
	f.session.RefreshSession(ctx)
	u := f.session.User()
	if u == nil {
		return nil, domainerrors.Unauthorized(MsgSessionNotEstablished)
	}
	return u, nil
}

// Register creates the provider account, sends the verification email and
// registers the user with the backend. It returns the pending-verification
// status for the UI.
func (f *AuthFlow) Register(ctx context.Context, input entities.RegisterInput) (entities.VerificationStatus, error) {
	input.Email = normalizeEmail(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.ReferralCode = strings.ToUpper(strings.TrimSpace(input.ReferralCode))
	if input.Email == "" {
		return entities.VerificationStatus{}, domainerrors.Validation("Email is required.")
	}
	if err := ValidatePassword(input.Password); err != nil {
		return entities.VerificationStatus{}, err
	}
	switch entities.UserRole(input.Role) {
	case "":
		input.Role = string(entities.UserRoleUser)
	case entities.UserRoleUser, entities.UserRoleMerchant:
	default:
		return entities.VerificationStatus{}, domainerrors.Validation("Choose either a user or a merchant account.")
	}

	if _, err := f.provider.SignUp(ctx, input.Email, input.Password); err != nil {
		return entities.VerificationStatus{}, err
	}
	if err := f.provider.SendEmailVerification(ctx); err != nil {
		logger.Warn(ctx, "Sending verification email after sign-up failed", zap.Error(err))
	}
	if _, err := f.accounts.Register(ctx, input); err != nil {
		return entities.VerificationStatus{}, err
	}

	logger.Info(ctx, "Account registered", zap.String("email", input.Email), zap.String("role", input.Role))
	return f.bridge.BeginPending(ctx, input.Email), nil
}

// ResetPassword completes a provider password-reset action.
func (f *AuthFlow) ResetPassword(ctx context.Context, input entities.ResetPasswordInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return domainerrors.Provider(domainerrors.CodeInvalidActionCode, nil)
	}
	if err := ValidatePassword(input.NewPassword); err != nil {
		return err
	}
	return f.provider.ConfirmPasswordReset(ctx, input.Code, input.NewPassword)
}

// Logout ends both the backend and the provider session.
func (f *AuthFlow) Logout(ctx context.Context) {
	f.session.Logout(ctx)
	f.provider.SignOut()
}
