package repositories

import (
	"context"

	"blip.dashboard/internal/domain/entities"
)

// AccountRepository is the backend's account surface. The backend keeps the
// session in an HTTP-only cookie, so no call here carries a token.
type AccountRepository interface {
	// Me returns the current user, or nil when the backend has no session.
	Me(ctx context.Context) (*entities.User, error)
	Login(ctx context.Context, input entities.LoginInput) (*entities.User, error)
	Register(ctx context.Context, input entities.RegisterInput) (*entities.User, error)
	Logout(ctx context.Context) error
	// LinkWallet returns only the user fields the backend chose to send back.
	LinkWallet(ctx context.Context, input entities.LinkWalletInput) (*entities.UserPatch, error)
	ConfirmEmailVerified(ctx context.Context, email string) error
}

// TaskVerificationRepository submits task proofs for server-side adjudication.
type TaskVerificationRepository interface {
	VerifyRetweet(ctx context.Context, req entities.RetweetVerification) (*entities.VerificationResult, error)
	VerifyTelegram(ctx context.Context, req entities.TelegramVerification) (*entities.VerificationResult, error)
	SubmitQuiz(ctx context.Context, req entities.QuizSubmission) (*entities.VerificationResult, error)
}

// PointsRepository reads the points ledger and referral list.
type PointsRepository interface {
	History(ctx context.Context) ([]entities.PointLog, error)
	Referrals(ctx context.Context) ([]entities.ReferredUser, error)
}
