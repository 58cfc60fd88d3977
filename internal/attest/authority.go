package attest

import (
	"github.com/ethereum/go-ethereum/common"
)

// Authority decides whether an attestation is genuine. The custody
// ledger takes it as a capability so the verification scheme (single
// key today, quorum later) can change without touching the state
// machine.
type Authority interface {
	Verify(digest common.Hash, sig []byte) bool
	Address() common.Address
}

// SingleKey accepts attestations from exactly one trusted account.
type SingleKey struct {
	trusted common.Address
}

func NewSingleKey(trusted common.Address) *SingleKey {
	return &SingleKey{trusted: trusted}
}

func (a *SingleKey) Verify(digest common.Hash, sig []byte) bool {
	signer, err := Recover(digest, sig)
	if err != nil {
		return false
	}
	return signer == a.trusted
}

func (a *SingleKey) Address() common.Address {
	return a.trusted
}
