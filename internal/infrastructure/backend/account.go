package backend

import (
	"context"
	"net/http"

	"blip.dashboard/internal/domain/entities"
	domainerrors "blip.dashboard/internal/domain/errors"
)

type userEnvelope struct {
	User *entities.User `json:"user"`
}

type patchEnvelope struct {
	User *entities.UserPatch `json:"user"`
}

// Me returns nil without error when the backend has no session.
func (c *Client) Me(ctx context.Context) (*entities.User, error) {
	var out userEnvelope
	err := c.call(ctx, http.MethodGet, "/user/me", nil, "", &out)
	if domainerrors.KindOf(err) == domainerrors.KindUnauthorized {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) Login(ctx context.Context, input entities.LoginInput) (*entities.User, error) {
	var out userEnvelope
	if err := c.call(ctx, http.MethodPost, "/auth/login", input, "", &out); err != nil {
		if domainerrors.KindOf(err) == domainerrors.KindUnauthorized {
			return nil, domainerrors.Unauthorized(domainerrors.MsgInvalidLogin)
		}
		return nil, err
	}
	return out.User, nil
}

func (c *Client) Register(ctx context.Context, input entities.RegisterInput) (*entities.User, error) {
	var out userEnvelope
	if err := c.call(ctx, http.MethodPost, "/auth/register", input, "", &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, "", nil)
}

// LinkWallet returns the user fields echoed by the backend. An empty reply
// yields an empty patch.
func (c *Client) LinkWallet(ctx context.Context, input entities.LinkWalletInput) (*entities.UserPatch, error) {
	var out patchEnvelope
	if err := c.call(ctx, http.MethodPost, "/auth/link-wallet", input, "", &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return &entities.UserPatch{}, nil
	}
	return out.User, nil
}

// ConfirmEmailVerified tells the backend the provider now reports the email
// as verified. The backend re-checks with the provider.
func (c *Client) ConfirmEmailVerified(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.call(ctx, http.MethodPost, "/auth/verify-email", body, "", nil)
}
