package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestUserApply_KeepsAbsentFields(t *testing.T) {
	u := User{
		ID:              "clx9a1b2c0000",
		Email:           "ana@blip.money",
		Role:            UserRoleUser,
		EmailVerified:   true,
		TotalBlipPoints: 300,
	}

	var patch UserPatch
	require.NoError(t, json.Unmarshal([]byte(`{"wallet_address":"0xAbC","wallet_linked":true}`), &patch))

	merged := u.Apply(patch)
	assert.True(t, merged.EmailVerified, "email_verified absent from patch must survive")
	assert.Equal(t, int64(300), merged.TotalBlipPoints)
	assert.Equal(t, null.StringFrom("0xAbC"), merged.WalletAddress)
	assert.True(t, merged.WalletLinked)
	assert.False(t, u.WalletLinked, "Apply must not mutate the receiver")
}

func TestUserApply_AllFields(t *testing.T) {
	id := "clx9a1b2c0001"
	email, phone, wallet, code := "b@blip.money", "+100", "0x1", "REF1"
	role := UserRoleMerchant
	yes := true
	pts := int64(42)

	got := User{}.Apply(UserPatch{
		ID: &id, Email: &email, Phone: &phone, WalletAddress: &wallet, Role: &role,
		EmailVerified: &yes, WalletLinked: &yes, TwoFactorEnabled: &yes,
		TotalBlipPoints: &pts, ReferralCode: &code,
	})

	assert.Equal(t, id, got.ID)
	assert.Equal(t, email, got.Email)
	assert.Equal(t, phone, got.Phone.String)
	assert.Equal(t, role, got.Role)
	assert.True(t, got.TwoFactorEnabled)
	assert.Equal(t, pts, got.TotalBlipPoints)
	assert.Equal(t, code, got.ReferralCode.String)
}

func TestUserHasWallet(t *testing.T) {
	assert.False(t, (&User{}).HasWallet())
	assert.True(t, (&User{WalletLinked: true}).HasWallet())
	assert.True(t, (&User{WalletAddress: null.StringFrom("0x1")}).HasWallet())
	assert.False(t, (&User{WalletAddress: null.StringFrom("")}).HasWallet())
}

func TestUserJSON_NullableFields(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"email":"c@blip.money","phone":null,"wallet_address":"0x2","role":"USER"}`), &u))
	assert.False(t, u.Phone.Valid)
	assert.True(t, u.WalletAddress.Valid)
	assert.Equal(t, UserRoleUser, u.Role)
}

func TestNewSession_DerivesAuthentication(t *testing.T) {
	u := &User{Email: "d@blip.money"}

	assert.False(t, NewSession(u, true, false).IsAuthenticated)
	assert.False(t, NewSession(nil, false, true).IsAuthenticated)

	s := NewSession(u, false, true)
	assert.True(t, s.IsAuthenticated)
	u.Email = "changed"
	assert.Equal(t, "d@blip.money", s.User.Email, "snapshot must be a copy")
}

func TestRewardFor(t *testing.T) {
	assert.Equal(t, int64(100), RewardFor(TaskRepost, UserRoleUser))
	assert.Equal(t, int64(200), RewardFor(TaskRepost, UserRoleMerchant))
	assert.Equal(t, int64(100), RewardFor(TaskChannelJoin, UserRoleAdmin))
	assert.Equal(t, int64(400), RewardFor(TaskQuiz, UserRoleMerchant))
	assert.Equal(t, int64(0), RewardFor(TaskKind("unknown"), UserRoleUser))
	assert.True(t, TaskQuiz.Valid())
	assert.False(t, TaskKind("follow").Valid())
}
