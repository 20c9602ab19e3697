package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	domainerrors "blip.dashboard/internal/domain/errors"
)

var ErrNoKey = errors.New("wallet has no signing key")

// KeyWallet is a WalletAdapter backed by a local secp256k1 key. Signatures
// follow personal_sign (EIP-191) so the backend can recover the address.
type KeyWallet struct {
	key *ecdsa.PrivateKey

	mu        sync.Mutex
	connected bool
}

// NewKeyWallet parses a hex private key, with or without 0x.
func NewKeyWallet(privateKeyHex string) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, domainerrors.Validation("invalid wallet private key")
	}
	return &KeyWallet{key: key}, nil
}

// NewKeyWalletFromKey wraps an existing key.
func NewKeyWalletFromKey(key *ecdsa.PrivateKey) *KeyWallet {
	return &KeyWallet{key: key}
}

func (w *KeyWallet) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected && w.key != nil
}

// Address returns the checksummed address, or "" when disconnected.
func (w *KeyWallet) Address() string {
	if !w.Connected() {
		return ""
	}
	return crypto.PubkeyToAddress(w.key.PublicKey).Hex()
}

func (w *KeyWallet) Connect(ctx context.Context) (string, error) {
	if w.key == nil {
		return "", ErrNoKey
	}
	w.mu.Lock()
	w.connected = true
	w.mu.Unlock()
	return crypto.PubkeyToAddress(w.key.PublicKey).Hex(), nil
}

func (w *KeyWallet) Disconnect(ctx context.Context) error {
	w.mu.Lock()
	w.connected = false
	w.mu.Unlock()
	return nil
}

// SignMessage returns a 65-byte personal_sign signature with V in {27, 28}.
func (w *KeyWallet) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	if !w.Connected() {
		return nil, domainerrors.ErrWalletNotConnected
	}
	sig, err := crypto.Sign(accounts.TextHash(message), w.key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// RecoverAddress returns the address that produced a personal_sign signature.
func RecoverAddress(message, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errors.New("invalid signature length")
	}
	cp := make([]byte, len(sig))
	copy(cp, sig)
	if cp[crypto.RecoveryIDOffset] >= 27 {
		cp[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(message), cp)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Disabled is the adapter used when no wallet is configured. It never
// connects.
type Disabled struct{}

func (Disabled) Connected() bool { return false }
func (Disabled) Address() string { return "" }
func (Disabled) Connect(context.Context) (string, error) {
	return "", domainerrors.ErrWalletNotConnected
}
func (Disabled) Disconnect(context.Context) error { return nil }
func (Disabled) SignMessage(context.Context, []byte) ([]byte, error) {
	return nil, domainerrors.ErrWalletNotConnected
}
