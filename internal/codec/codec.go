// Package codec builds the canonical transfer digests the trusted
// authority signs. Encoding is order- and type-sensitive: fixed-width
// big-endian integers, raw 20-byte addresses, and length-prefixed
// strings, hashed with Keccak-256. Two distinct parameter tuples can
// never collide on the same digest.
package codec

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var (
	ErrNilAmount   = errors.New("codec: nil amount")
	ErrAmountRange = errors.New("codec: amount out of uint256 range")
)

const amountWidth = 32

// ReleaseDigest is the 4-field digest authorizing a custody withdrawal
// of a home asset.
func ReleaseDigest(sourceChainID uint64, asset common.Address, amount *big.Int, receiver common.Address) (common.Hash, error) {
	buf, err := encodeCommon(sourceChainID, asset, amount, receiver)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(buf), nil
}

// MintDigest is the 6-field digest authorizing a wrapped mint. It binds
// the proposed wrapped-asset name and symbol to the attestation so the
// metadata cannot be altered after signing.
func MintDigest(sourceChainID uint64, asset common.Address, amount *big.Int, receiver common.Address, name, symbol string) (common.Hash, error) {
	buf, err := encodeCommon(sourceChainID, asset, amount, receiver)
	if err != nil {
		return common.Hash{}, err
	}
	buf = appendString(buf, name)
	buf = appendString(buf, symbol)
	return crypto.Keccak256Hash(buf), nil
}

func encodeCommon(sourceChainID uint64, asset common.Address, amount *big.Int, receiver common.Address) ([]byte, error) {
	if amount == nil {
		return nil, ErrNilAmount
	}
	if amount.Sign() < 0 || amount.BitLen() > amountWidth*8 {
		return nil, ErrAmountRange
	}

	buf := make([]byte, 0, 8+common.AddressLength*2+amountWidth)
	buf = binary.BigEndian.AppendUint64(buf, sourceChainID)
	buf = append(buf, asset.Bytes()...)
	buf = append(buf, amount.FillBytes(make([]byte, amountWidth))...)
	buf = append(buf, receiver.Bytes()...)
	return buf, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
