// Package registry tracks, per (home chain, home asset) pair, the
// wrapped-asset instance deployed on this ledger. Registration is the
// only place new asset classes are created and is idempotent by key:
// the same pair can never be wrapped twice, whatever names the second
// attempt carries.
package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/openbridge-io/bridge-core/internal/constants"
	"github.com/openbridge-io/bridge-core/internal/token"
)

var (
	ErrAlreadyWrapped = errors.New("registry: pair already wrapped")
	ErrNotWrapped     = errors.New("registry: no wrapped token for pair")
	ErrBadName        = errors.New("registry: empty token name")
	ErrBadSymbol      = errors.New("registry: empty token symbol")
	ErrBadChainID     = errors.New("registry: home chain id must be non-zero")
)

// Key identifies a home asset across the bridge.
type Key struct {
	HomeChainID uint64
	HomeAsset   common.Address
}

// Record is the immutable registration entry for one wrapped asset.
type Record struct {
	HomeChainID uint64
	HomeAsset   common.Address
	Wrapped     common.Address
	Name        string
	Symbol      string
}

// Registry owns the wrapped-asset records and the lifecycle of their
// token instances. The registry account is the owner (sole
// minter/burner) of every instance it deploys. Not safe for concurrent
// use; the custody ledger serializes all access.
type Registry struct {
	account common.Address
	bank    *token.Bank

	byKey     map[Key]*Record
	byWrapped map[common.Address]Key
	order     []Key
}

func New(bank *token.Bank) *Registry {
	return &Registry{
		account:   common.HexToAddress(constants.RegistryAddr),
		bank:      bank,
		byKey:     make(map[Key]*Record),
		byWrapped: make(map[common.Address]Key),
	}
}

func (r *Registry) Account() common.Address { return r.account }

// Register deploys a wrapped token for the pair and stores its record.
// Atomic get-or-insert: validation happens before any state write, and
// a duplicate key fails without touching the bank.
func (r *Registry) Register(homeChainID uint64, homeAsset common.Address, name, symbol string) (*Record, error) {
	if homeChainID == 0 {
		return nil, ErrBadChainID
	}
	if name == "" {
		return nil, ErrBadName
	}
	if symbol == "" {
		return nil, ErrBadSymbol
	}

	key := Key{HomeChainID: homeChainID, HomeAsset: homeAsset}
	if _, exists := r.byKey[key]; exists {
		return nil, errors.Wrapf(ErrAlreadyWrapped, "chain %d asset %s", homeChainID, homeAsset.Hex())
	}

	t := r.bank.Deploy(r.account, name, symbol, constants.WrappedDecimals)
	rec := &Record{
		HomeChainID: homeChainID,
		HomeAsset:   homeAsset,
		Wrapped:     t.Address(),
		Name:        name,
		Symbol:      symbol,
	}
	r.byKey[key] = rec
	r.byWrapped[rec.Wrapped] = key
	r.order = append(r.order, key)
	return rec, nil
}

// ResolveWrapped returns the wrapped-token address for the pair.
func (r *Registry) ResolveWrapped(homeChainID uint64, homeAsset common.Address) (common.Address, error) {
	rec, ok := r.byKey[Key{HomeChainID: homeChainID, HomeAsset: homeAsset}]
	if !ok {
		return common.Address{}, errors.Wrapf(ErrNotWrapped, "chain %d asset %s", homeChainID, homeAsset.Hex())
	}
	return rec.Wrapped, nil
}

// ResolveHome is the reverse lookup used on the burn path.
func (r *Registry) ResolveHome(wrapped common.Address) (uint64, common.Address, error) {
	key, ok := r.byWrapped[wrapped]
	if !ok {
		return 0, common.Address{}, errors.Wrapf(ErrNotWrapped, "wrapped %s", wrapped.Hex())
	}
	return key.HomeChainID, key.HomeAsset, nil
}

// Records returns all registrations in registration order.
func (r *Registry) Records() []Record {
	out := make([]Record, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, *r.byKey[key])
	}
	return out
}

// MintWrapped mints amount of the wrapped token to receiver.
func (r *Registry) MintWrapped(wrapped, receiver common.Address, amount *big.Int) error {
	if _, ok := r.byWrapped[wrapped]; !ok {
		return errors.Wrapf(ErrNotWrapped, "wrapped %s", wrapped.Hex())
	}
	t, err := r.bank.Get(wrapped)
	if err != nil {
		return err
	}
	return t.Mint(r.account, receiver, amount)
}

// BurnWrapped burns amount of the wrapped token from owner. When owner
// is not the registry account itself, owner must have granted the
// registry a sufficient allowance.
func (r *Registry) BurnWrapped(wrapped, owner common.Address, amount *big.Int) error {
	if _, ok := r.byWrapped[wrapped]; !ok {
		return errors.Wrapf(ErrNotWrapped, "wrapped %s", wrapped.Hex())
	}
	t, err := r.bank.Get(wrapped)
	if err != nil {
		return err
	}
	return t.BurnFrom(r.account, owner, amount)
}
