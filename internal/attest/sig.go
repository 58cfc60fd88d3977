package attest

import (
	"fmt"

	"github.com/openbridge-io/bridge-core/internal/constants"
)

func EnsureDigest32(d []byte) error {
	if len(d) != constants.DigestSize {
		return fmt.Errorf("digest must be %d bytes, got %d", constants.DigestSize, len(d))
	}
	return nil
}

// SigToV27 converts V 0/1 -> 27/28 (the shape wallets and the off-chain
// authority emit). If V is already 27/28, it leaves it unchanged.
func SigToV27(sig65 []byte) ([]byte, error) {
	if len(sig65) != constants.SignatureSize {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", constants.SignatureSize, len(sig65))
	}
	out := make([]byte, constants.SignatureSize)
	copy(out, sig65)

	switch out[64] {
	case 0, 1:
		out[64] += 27
	case 27, 28:
		// ok
	default:
		return nil, fmt.Errorf("unexpected v value %d", out[64])
	}
	return out, nil
}

// sigToV0 is the inverse: V 27/28 -> 0/1, the form secp256k1 recovery
// expects.
func sigToV0(sig65 []byte) ([]byte, error) {
	if len(sig65) != constants.SignatureSize {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", constants.SignatureSize, len(sig65))
	}
	out := make([]byte, constants.SignatureSize)
	copy(out, sig65)

	switch out[64] {
	case 0, 1:
		// ok
	case 27, 28:
		out[64] -= 27
	default:
		return nil, fmt.Errorf("unexpected v value %d", out[64])
	}
	return out, nil
}
