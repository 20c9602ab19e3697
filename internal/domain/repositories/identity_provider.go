package repositories

import (
	"context"
	"time"
)

// ProviderUser is the identity provider's view of the signed-in user.
type ProviderUser struct {
	UID           string
	Email         string
	EmailVerified bool
	IDToken       string
	ExpiresAt     time.Time
}

// AuthStateListener receives the provider's current user, nil when signed out.
type AuthStateListener func(user *ProviderUser)

// IdentityProvider is the third-party identity service.
type IdentityProvider interface {
	// OnAuthStateChanged registers l and invokes it once with the current
	// state. The returned func unsubscribes.
	OnAuthStateChanged(l AuthStateListener) (unsubscribe func())
	CurrentUser() *ProviderUser
	// Reload refreshes the current user from the provider, bypassing any cached flags.
	Reload(ctx context.Context) (*ProviderUser, error)
	SignIn(ctx context.Context, email, password string) (*ProviderUser, error)
	SignUp(ctx context.Context, email, password string) (*ProviderUser, error)
	SignOut()
	SendEmailVerification(ctx context.Context) error
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) error
}

// WalletAdapter is the external wallet connection.
type WalletAdapter interface {
	Connected() bool
	Address() string
	Connect(ctx context.Context) (string, error)
	Disconnect(ctx context.Context) error
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// PendingEmailStore keeps the in-flight verification email across restarts.
type PendingEmailStore interface {
	Save(ctx context.Context, email string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
