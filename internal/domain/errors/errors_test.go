package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	err := NewAppError(http.StatusBadRequest, KindValidation, CodeValidation, "bad", ErrInvalidInput)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "bad: "+ErrInvalidInput.Error(), err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)

	validation := Validation("bad url")
	assert.Equal(t, KindValidation, validation.Kind)
	assert.Equal(t, "bad url", validation.Message)

	conflict := Conflict(MsgWalletConflict)
	assert.Equal(t, http.StatusConflict, conflict.Status)
	assert.Equal(t, CodeWalletConflict, conflict.Code)

	network := Network(stderrors.New("dial tcp: refused"))
	assert.Equal(t, KindNetwork, network.Kind)
	assert.ErrorIs(t, network, ErrBackendUnavailable)

	limited := RateLimited(nil)
	assert.Equal(t, http.StatusTooManyRequests, limited.Status)
	assert.Equal(t, MsgRateLimited, limited.Message)

	notVerified := NotVerified()
	assert.Equal(t, http.StatusForbidden, notVerified.Status)
	assert.Equal(t, CodeEmailNotVerified, notVerified.Code)

	internal := InternalError(stderrors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, CodeInternalError, internal.Code)

	rejected := Rejected("")
	assert.Equal(t, MsgVerificationNo, rejected.Message)
	assert.Equal(t, "Tweet not found", Rejected("Tweet not found").Message)

	assert.Equal(t, KindInvalidState, InvalidState("x").Kind)
	assert.Equal(t, http.StatusNotFound, NotFound("x").Status)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").Status)
}

func TestProvider_MapsCodesToDistinctCopy(t *testing.T) {
	cause := stderrors.New("provider said no")

	expired := Provider(CodeExpiredActionCode, cause)
	invalid := Provider(CodeInvalidActionCode, cause)
	weak := Provider(CodeWeakPassword, cause)
	limited := Provider(CodeTooManyAttempts, cause)
	creds := Provider("INVALID_LOGIN_CREDENTIALS", cause)
	other := Provider("OPERATION_NOT_ALLOWED", cause)

	assert.Equal(t, MsgExpiredCode, expired.Message)
	assert.Equal(t, MsgInvalidCode, invalid.Message)
	assert.Equal(t, MsgWeakPassword, weak.Message)
	assert.Equal(t, KindValidation, weak.Kind)
	assert.Equal(t, KindRateLimited, limited.Kind)
	assert.Equal(t, MsgInvalidLogin, creds.Message)
	assert.ErrorIs(t, creds, ErrInvalidCredentials)
	assert.ErrorIs(t, other, ErrProviderUnavailable)

	seen := map[string]bool{}
	for _, e := range []*AppError{expired, invalid, weak, limited, creds, other} {
		assert.False(t, seen[e.Message], "duplicate copy %q", e.Message)
		seen[e.Message] = true
	}
}

func TestHelpers(t *testing.T) {
	wrapped := fmt.Errorf("link wallet: %w", Conflict(MsgWalletConflict))

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, http.StatusConflict, StatusOf(wrapped))
	assert.True(t, IsConflict(wrapped))
	assert.Equal(t, MsgWalletConflict, UserMessage(wrapped))

	plain := stderrors.New("connection reset by peer")
	assert.Equal(t, KindNetwork, KindOf(plain))
	assert.Equal(t, 0, StatusOf(plain))
	assert.False(t, IsConflict(plain))
	assert.Equal(t, MsgNetwork, UserMessage(plain))

	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, "", UserMessage(nil))
	assert.False(t, IsConflict(InvalidState("busy")))

	_, ok := As(plain)
	assert.False(t, ok)
}
