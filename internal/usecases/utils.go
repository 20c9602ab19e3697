package usecases

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
)

func nullString(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checksumAddress validates an EVM address and returns its EIP-55 form.
func checksumAddress(address string) (string, bool) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return "", false
	}
	return common.HexToAddress(address).Hex(), true
}
