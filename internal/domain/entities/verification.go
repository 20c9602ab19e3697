package entities

// VerificationState is a step of the pending email verification screen.
type VerificationState string

const (
	VerificationIdle            VerificationState = "idle"
	VerificationWaitingProvider VerificationState = "waiting-provider"
	VerificationPolling         VerificationState = "polling"
	VerificationVerified        VerificationState = "verified"
	VerificationError           VerificationState = "error"
)

// VerificationStatus is the externally visible state of the identity bridge.
type VerificationStatus struct {
	State         VerificationState `json:"state"`
	Email         string            `json:"email,omitempty"`
	ProviderReady bool              `json:"provider_ready"`
	Message       string            `json:"message,omitempty"`
	Navigation    *Navigation       `json:"navigation,omitempty"`
}
