package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Config is fixed at construction. The trusted signer can only change
// by swapping the injected Authority, never by mutating a live ledger.
type Config struct {
	// ChainID identifies the ledger this process serves.
	ChainID uint64

	// TrustedSigner is the single attestation authority account. Used
	// to build the default Authority when none is injected.
	TrustedSigner common.Address

	// ServiceFeeWei is the fixed native-currency fee accompanying every
	// lock.
	ServiceFeeWei *big.Int
}

func (c Config) Validate() error {
	if c.ChainID == 0 {
		return errors.New("bridge: chain id must be non-zero")
	}
	if c.TrustedSigner == (common.Address{}) {
		return errors.New("bridge: trusted signer must be set")
	}
	if c.ServiceFeeWei == nil || c.ServiceFeeWei.Sign() < 0 {
		return errors.New("bridge: service fee must be a non-negative amount")
	}
	return nil
}
