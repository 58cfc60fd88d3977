package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var ErrUnknownToken = errors.New("token: unknown token")

// Bank is the address-keyed set of token ledgers live in this process.
// Deployment addresses are derived the way the chain derives contract
// addresses, from the deployer account and its nonce, so they are
// deterministic and never collide. Not safe for concurrent use; the
// custody ledger serializes all access.
type Bank struct {
	tokens map[common.Address]*Token
	nonces map[common.Address]uint64
}

func NewBank() *Bank {
	return &Bank{
		tokens: make(map[common.Address]*Token),
		nonces: make(map[common.Address]uint64),
	}
}

// Deploy creates a new token ledger owned by `owner` and returns it.
func (b *Bank) Deploy(owner common.Address, name, symbol string, decimals uint8) *Token {
	nonce := b.nonces[owner]
	b.nonces[owner] = nonce + 1

	addr := crypto.CreateAddress(owner, nonce)
	t := newToken(addr, owner, name, symbol, decimals)
	b.tokens[addr] = t
	return t
}

func (b *Bank) Get(addr common.Address) (*Token, error) {
	t, ok := b.tokens[addr]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownToken, "%s", addr.Hex())
	}
	return t, nil
}

func (b *Bank) Has(addr common.Address) bool {
	_, ok := b.tokens[addr]
	return ok
}
