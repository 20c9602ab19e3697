package entities

// WalletBindingState is a step of the wallet binding flow.
type WalletBindingState string

const (
	WalletStateDisconnected WalletBindingState = "disconnected"
	WalletStateConnected    WalletBindingState = "connected"
	WalletStateLinking      WalletBindingState = "linking"
	WalletStateLinked       WalletBindingState = "linked"
	WalletStateError        WalletBindingState = "error"
)

// LinkWalletInput is the body of the backend link-wallet call.
type LinkWalletInput struct {
	WalletAddress string `json:"wallet_address"`
	Message       string `json:"message,omitempty"`
	Signature     string `json:"signature,omitempty"`
}

// Navigation is a screen change requested by a flow.
type Navigation struct {
	To      string            `json:"to"`
	Replace bool              `json:"replace"`
	State   map[string]string `json:"state,omitempty"`
}

// WalletFlowView is the externally visible state of the binding flow.
type WalletFlowView struct {
	State      WalletBindingState `json:"state"`
	Address    string             `json:"address,omitempty"`
	Message    string             `json:"message,omitempty"`
	Navigation *Navigation        `json:"navigation,omitempty"`
	Closed     bool               `json:"closed"`
}
