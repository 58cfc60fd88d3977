// Package token keeps the fungible-asset books the bridge moves value
// on: balances, allowances, and restricted mint/burn, with the same
// observable surface as the ERC-20 instances the custody contract
// shuffles on chain. Every method takes the acting account explicitly;
// there is no ambient caller.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	ErrZeroAddress           = errors.New("token: zero address")
	ErrBadAmount             = errors.New("token: amount must be positive")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrNotOwner              = errors.New("token: caller is not the owner")
)

// Token is a single fungible asset ledger. Not safe for concurrent use;
// the custody ledger serializes all access.
type Token struct {
	address  common.Address
	owner    common.Address
	name     string
	symbol   string
	decimals uint8

	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
}

func newToken(address, owner common.Address, name, symbol string, decimals uint8) *Token {
	return &Token{
		address:     address,
		owner:       owner,
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		totalSupply: new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

func (t *Token) Address() common.Address { return t.address }
func (t *Token) Owner() common.Address   { return t.owner }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Decimals() uint8         { return t.decimals }

func (t *Token) TotalSupply() *big.Int {
	return new(big.Int).Set(t.totalSupply)
}

func (t *Token) BalanceOf(owner common.Address) *big.Int {
	if b, ok := t.balances[owner]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(big.Int).Set(a)
		}
	}
	return new(big.Int)
}

// Transfer moves amount from the acting account to `to`.
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	return t.move(from, to, amount)
}

// TransferFrom moves amount from `from` to `to`, spending the allowance
// `from` granted to the acting account.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := t.spendAllowance(from, spender, amount); err != nil {
		return err
	}
	return t.move(from, to, amount)
}

// Approve sets the allowance the acting account grants to spender.
func (t *Token) Approve(owner, spender common.Address, amount *big.Int) error {
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrBadAmount
	}
	t.setAllowance(owner, spender, new(big.Int).Set(amount))
	return nil
}

// IncreaseAllowance adds delta to the allowance the acting account
// grants to spender.
func (t *Token) IncreaseAllowance(owner, spender common.Address, delta *big.Int) error {
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := checkAmount(delta); err != nil {
		return err
	}
	cur := t.Allowance(owner, spender)
	t.setAllowance(owner, spender, cur.Add(cur, delta))
	return nil
}

// Mint creates amount new units for `to`. Restricted to the token owner.
func (t *Token) Mint(caller, to common.Address, amount *big.Int) error {
	if caller != t.owner {
		return ErrNotOwner
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	t.credit(to, amount)
	t.totalSupply.Add(t.totalSupply, amount)
	return nil
}

// BurnFrom destroys amount units held by `from`. Restricted to the
// token owner; when burning another account's balance the owner must
// hold a sufficient allowance from it.
func (t *Token) BurnFrom(caller, from common.Address, amount *big.Int) error {
	if caller != t.owner {
		return ErrNotOwner
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if from != caller {
		if err := t.spendAllowance(from, caller, amount); err != nil {
			return err
		}
	}
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.totalSupply.Sub(t.totalSupply, amount)
	return nil
}

func (t *Token) move(from, to common.Address, amount *big.Int) error {
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.credit(to, amount)
	return nil
}

func (t *Token) debit(from common.Address, amount *big.Int) error {
	bal, ok := t.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	return nil
}

func (t *Token) credit(to common.Address, amount *big.Int) {
	bal, ok := t.balances[to]
	if !ok {
		bal = new(big.Int)
		t.balances[to] = bal
	}
	bal.Add(bal, amount)
}

func (t *Token) spendAllowance(owner, spender common.Address, amount *big.Int) error {
	cur := t.Allowance(owner, spender)
	if cur.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	t.setAllowance(owner, spender, cur.Sub(cur, amount))
	return nil
}

func (t *Token) setAllowance(owner, spender common.Address, amount *big.Int) {
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[common.Address]*big.Int)
		t.allowances[owner] = m
	}
	m[spender] = amount
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrBadAmount
	}
	return nil
}
