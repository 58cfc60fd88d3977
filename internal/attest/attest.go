// Package attest authenticates transfer attestations: 65-byte secp256k1
// recovery signatures over a canonical transfer digest, signed by the
// bridge's trusted authority with the Ethereum signed-message convention
// (personal_sign over the raw 32-byte digest).
package attest

import (
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Recover returns the account whose key produced sig over digest.
//
// The digest is prefixed with "\x19Ethereum Signed Message:\n32" before
// recovery, matching how the off-chain authority signs (ethers
// signMessage over the arrayified digest). Call sites and the signer
// must agree on this convention or recovery yields a stranger's address.
func Recover(digest common.Hash, sig []byte) (common.Address, error) {
	norm, err := sigToV0(sig)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "attest: malformed signature")
	}

	pub, err := crypto.SigToPub(accounts.TextHash(digest[:]), norm)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "attest: recover")
	}
	return crypto.PubkeyToAddress(*pub), nil
}
