package usecases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blip.dashboard/internal/domain/entities"
	"blip.dashboard/internal/usecases"
)

func TestDecide(t *testing.T) {
	unverified := verifiedUser()
	unverified.EmailVerified = false
	noWallet := verifiedUser()

	tests := []struct {
		name    string
		session entities.Session
		action  usecases.GuardAction
		to      string
	}{
		{"loading", entities.NewSession(nil, true, false), usecases.GuardLoading, ""},
		{"loading with user", entities.NewSession(verifiedUser(), true, false), usecases.GuardLoading, ""},
		{"signed out", entities.NewSession(nil, false, true), usecases.GuardRedirect, usecases.RouteLogin},
		{"unverified", entities.NewSession(unverified, false, true), usecases.GuardRedirect, usecases.RouteVerifyEmail},
		{"verified without wallet", entities.NewSession(noWallet, false, true), usecases.GuardRender, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := usecases.Decide(tt.session)
			assert.Equal(t, tt.action, d.Action)
			if tt.to == "" {
				assert.Nil(t, d.Navigation)
				return
			}
			require.NotNil(t, d.Navigation)
			assert.Equal(t, tt.to, d.Navigation.To)
			assert.True(t, d.Navigation.Replace)
		})
	}
}

func TestDecide_UnverifiedCarriesEmail(t *testing.T) {
	u := verifiedUser()
	u.EmailVerified = false

	d := usecases.Decide(entities.NewSession(u, false, true))

	require.NotNil(t, d.Navigation)
	assert.Equal(t, u.Email, d.Navigation.State["email"])
}

func TestRouteGuard_FollowsSession(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountRepository)
	session := usecases.NewSessionStore(accounts)
	guard := usecases.NewRouteGuard(session)

	assert.Equal(t, usecases.GuardLoading, guard.Check().Action)

	accounts.On("Me", ctx).Return(verifiedUser(), nil).Once()
	session.RefreshSession(ctx)
	assert.Equal(t, usecases.GuardRender, guard.Check().Action)

	// Later refreshes do not flip back to loading.
	accounts.On("Me", ctx).Return(nil, nil).Once()
	session.RefreshSession(ctx)
	assert.Equal(t, usecases.GuardRedirect, guard.Check().Action)
}
