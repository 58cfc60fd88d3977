package attest

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signer produces attestations the way the off-chain authority does:
// personal_sign over the raw digest, V emitted as 27/28. Used by the
// relay-side tooling and by tests; the production daemon only verifies.
type Signer struct {
	key *ecdsa.PrivateKey
}

func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{key: key}
}

func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SignDigest signs the prefixed digest and returns a 65-byte
// [R || S || V] signature with V in 27/28 form.
func (s *Signer) SignDigest(digest common.Hash) ([]byte, error) {
	raw, err := crypto.Sign(accounts.TextHash(digest[:]), s.key)
	if err != nil {
		return nil, errors.Wrap(err, "attest: sign")
	}
	return SigToV27(raw)
}
