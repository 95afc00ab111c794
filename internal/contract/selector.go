package contract

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// Selector computes the 4-byte selector of a canonical signature such as
// "approve(address,uint256)". Returned as 0x-prefixed hex.
func Selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(strings.ReplaceAll(signature, " ", "")))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// MethodSelector returns the canonical signature and selector of fn in a.
func MethodSelector(a *abi.ABI, fn string) (sig, selector string, err error) {
	m, ok := a.Methods[fn]
	if !ok {
		return "", "", fmt.Errorf("function %q not found in ABI", fn)
	}
	return m.Sig, "0x" + hex.EncodeToString(m.ID), nil
}
