// Package bridge implements the custody ledger: the state machine that
// decides when value may leave custody, when a new wrapped-asset class
// is created, and how attestations are authenticated. Each operation is
// atomic and total; a failed precondition aborts the call with no
// partial state change.
package bridge

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/openbridge-io/bridge-core/internal/attest"
	"github.com/openbridge-io/bridge-core/internal/codec"
	"github.com/openbridge-io/bridge-core/internal/constants"
	"github.com/openbridge-io/bridge-core/internal/registry"
	"github.com/openbridge-io/bridge-core/internal/token"
)

var (
	ErrBadArgs           = errors.New("bridge: attested digest does not match supplied parameters")
	ErrBadSigner         = errors.New("bridge: recovered signer is not the trusted authority")
	ErrTokenDoesNotExist = errors.New("bridge: no entry for the referenced asset")
	ErrInsufficientFee   = errors.New("bridge: attached payment below service fee")
	ErrTransferFailed    = errors.New("bridge: asset movement rejected")
)

// TransferRequest is the transient value object an attestation covers.
// It is consumed by Release and Mint and never persisted.
type TransferRequest struct {
	SourceChainID uint64
	Asset         common.Address
	Amount        *big.Int
	Receiver      common.Address

	// WrappedName and WrappedSymbol are only part of the 6-field mint
	// digest.
	WrappedName   string
	WrappedSymbol string

	Digest    common.Hash
	Signature []byte
}

// Ledger owns the locked balances, the fee pool, the asset registry and
// the token bank. A single mutex serializes every operation: state is
// single-writer, calls run to completion with no interleaving.
type Ledger struct {
	mu sync.Mutex

	cfg       Config
	authority attest.Authority
	account   common.Address
	native    common.Address

	bank *token.Bank
	reg  *registry.Registry

	locked        map[common.Address]*big.Int
	nativeEscrow  *big.Int
	nativePayouts map[common.Address]*big.Int
	fees          *big.Int

	scope       event.SubscriptionScope
	lockFeed    event.Feed
	releaseFeed event.Feed
	mintFeed    event.Feed
	burnFeed    event.Feed
	deployFeed  event.Feed

	log *zap.SugaredLogger
}

// New builds a ledger over the given bank and registry. A nil authority
// defaults to single-key verification against cfg.TrustedSigner.
func New(cfg Config, authority attest.Authority, bank *token.Bank, reg *registry.Registry, log *zap.SugaredLogger) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if bank == nil || reg == nil {
		return nil, errors.New("bridge: bank and registry are required")
	}
	if authority == nil {
		authority = attest.NewSingleKey(cfg.TrustedSigner)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Ledger{
		cfg:           cfg,
		authority:     authority,
		account:       common.HexToAddress(constants.CustodyAddr),
		native:        common.HexToAddress(constants.NativeAddr),
		bank:          bank,
		reg:           reg,
		locked:        make(map[common.Address]*big.Int),
		nativeEscrow:  new(big.Int),
		nativePayouts: make(map[common.Address]*big.Int),
		fees:          new(big.Int),
		log:           log,
	}, nil
}

// Close terminates all event subscriptions.
func (l *Ledger) Close() {
	l.scope.Close()
}

func (l *Ledger) Account() common.Address { return l.account }
func (l *Ledger) ChainID() uint64         { return l.cfg.ChainID }

// ServiceFee returns the configured per-lock fee.
func (l *Ledger) ServiceFee() *big.Int {
	return new(big.Int).Set(l.cfg.ServiceFeeWei)
}

// Lock takes amount of homeAsset from caller into custody. paymentWei
// is the attached native value; it must cover the service fee, and for
// the native asset itself the fee plus the locked amount. Each call is
// a new, independent transfer; the relay is responsible for not
// double-submitting.
func (l *Ledger) Lock(ctx context.Context, caller common.Address, targetChainID uint64, homeAsset common.Address, amount, paymentWei *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errors.Wrap(ErrBadArgs, "lock amount must be positive")
	}
	if paymentWei == nil || paymentWei.Cmp(l.cfg.ServiceFeeWei) < 0 {
		return ErrInsufficientFee
	}

	if homeAsset == l.native {
		// Native custody: the escrowed value rides on the payment.
		escrowed := new(big.Int).Sub(paymentWei, l.cfg.ServiceFeeWei)
		if escrowed.Cmp(amount) < 0 {
			return fmt.Errorf("%w: attached value %s does not cover fee plus amount", ErrTransferFailed, paymentWei)
		}
	} else {
		tok, err := l.bank.Get(homeAsset)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
		if err := tok.TransferFrom(l.account, caller, l.account, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
	}

	l.creditLocked(homeAsset, amount)
	if homeAsset == l.native {
		l.nativeEscrow.Add(l.nativeEscrow, amount)
	}
	l.fees.Add(l.fees, l.cfg.ServiceFeeWei)

	evt := LockEvent{
		ID:            uuid.NewString(),
		TargetChainID: targetChainID,
		Asset:         homeAsset,
		Caller:        caller,
		Amount:        new(big.Int).Set(amount),
		Payment:       new(big.Int).Set(paymentWei),
	}
	l.lockFeed.Send(evt)
	l.log.Infow("lock",
		"event_id", evt.ID,
		"target_chain", targetChainID,
		"asset", homeAsset.Hex(),
		"caller", caller.Hex(),
		"amount", amount.String(),
	)
	return nil
}

// Release pays amount of the home asset out of custody to the attested
// receiver. The attestation has no nonce: a captured valid request
// stays replayable until the locked balance runs dry.
func (l *Ledger) Release(ctx context.Context, req TransferRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	digest, err := codec.ReleaseDigest(req.SourceChainID, req.Asset, req.Amount, req.Receiver)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadArgs, err)
	}
	if digest != req.Digest {
		return ErrBadArgs
	}
	if !l.authority.Verify(digest, req.Signature) {
		return ErrBadSigner
	}

	bal, ok := l.locked[req.Asset]
	if !ok {
		return errors.Wrapf(ErrTokenDoesNotExist, "asset %s", req.Asset.Hex())
	}
	if bal.Cmp(req.Amount) < 0 {
		return errors.Wrapf(ErrBadArgs, "amount %s exceeds locked balance %s", req.Amount, bal)
	}

	if req.Asset == l.native {
		l.nativeEscrow.Sub(l.nativeEscrow, req.Amount)
		l.creditNative(req.Receiver, req.Amount)
	} else {
		tok, err := l.bank.Get(req.Asset)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
		if err := tok.Transfer(l.account, req.Receiver, req.Amount); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
	}
	bal.Sub(bal, req.Amount)

	evt := ReleaseEvent{
		ID:            uuid.NewString(),
		SourceChainID: req.SourceChainID,
		Asset:         req.Asset,
		Amount:        new(big.Int).Set(req.Amount),
		Receiver:      req.Receiver,
	}
	l.releaseFeed.Send(evt)
	l.log.Infow("release",
		"event_id", evt.ID,
		"source_chain", req.SourceChainID,
		"asset", req.Asset.Hex(),
		"receiver", req.Receiver.Hex(),
		"amount", req.Amount.String(),
	)
	return nil
}

// Mint creates attested wrapped supply for the receiver, deploying the
// wrapped-asset class on first sight of the (source chain, asset) pair.
// Same replay caveat as Release.
func (l *Ledger) Mint(ctx context.Context, req TransferRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	digest, err := codec.MintDigest(req.SourceChainID, req.Asset, req.Amount, req.Receiver, req.WrappedName, req.WrappedSymbol)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadArgs, err)
	}
	if digest != req.Digest {
		return ErrBadArgs
	}
	if !l.authority.Verify(digest, req.Signature) {
		return ErrBadSigner
	}

	wrapped, err := l.reg.ResolveWrapped(req.SourceChainID, req.Asset)
	if errors.Is(err, registry.ErrNotWrapped) {
		rec, regErr := l.reg.Register(req.SourceChainID, req.Asset, req.WrappedName, req.WrappedSymbol)
		if regErr != nil {
			return regErr
		}
		wrapped = rec.Wrapped

		devt := WrappedDeployedEvent{
			ID:          uuid.NewString(),
			HomeChainID: rec.HomeChainID,
			HomeAsset:   rec.HomeAsset,
			Wrapped:     rec.Wrapped,
			Name:        rec.Name,
			Symbol:      rec.Symbol,
		}
		l.deployFeed.Send(devt)
		l.log.Infow("wrapped token deployed",
			"event_id", devt.ID,
			"home_chain", rec.HomeChainID,
			"home_asset", rec.HomeAsset.Hex(),
			"wrapped", rec.Wrapped.Hex(),
			"symbol", rec.Symbol,
		)
	} else if err != nil {
		return err
	}

	if err := l.reg.MintWrapped(wrapped, req.Receiver, req.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	evt := MintEvent{
		ID:       uuid.NewString(),
		Wrapped:  wrapped,
		Amount:   new(big.Int).Set(req.Amount),
		Receiver: req.Receiver,
	}
	l.mintFeed.Send(evt)
	l.log.Infow("mint",
		"event_id", evt.ID,
		"wrapped", wrapped.Hex(),
		"receiver", req.Receiver.Hex(),
		"amount", req.Amount.String(),
	)
	return nil
}

// Burn destroys amount of the caller's wrapped balance for the (source
// chain, home asset) pair. receiver is advisory data for the relay: it
// names the home-ledger account the subsequent release should pay, and
// is carried on the event unenforced.
func (l *Ledger) Burn(ctx context.Context, caller common.Address, sourceChainID uint64, homeAsset common.Address, amount *big.Int, receiver common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errors.Wrap(ErrBadArgs, "burn amount must be positive")
	}

	wrapped, err := l.reg.ResolveWrapped(sourceChainID, homeAsset)
	if err != nil {
		return errors.Wrapf(ErrTokenDoesNotExist, "chain %d asset %s", sourceChainID, homeAsset.Hex())
	}

	if err := l.reg.BurnWrapped(wrapped, caller, amount); err != nil {
		if errors.Is(err, token.ErrInsufficientAllowance) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	evt := BurnEvent{
		ID:       uuid.NewString(),
		Wrapped:  wrapped,
		Caller:   caller,
		Amount:   new(big.Int).Set(amount),
		Receiver: receiver,
	}
	l.burnFeed.Send(evt)
	l.log.Infow("burn",
		"event_id", evt.ID,
		"wrapped", wrapped.Hex(),
		"caller", caller.Hex(),
		"receiver", receiver.Hex(),
		"amount", amount.String(),
	)
	return nil
}

// LockedBalance returns the custody balance for a home asset. Assets
// never locked report zero.
func (l *Ledger) LockedBalance(asset common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if bal, ok := l.locked[asset]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// CollectedFees returns the accumulated service fees.
func (l *Ledger) CollectedFees() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.fees)
}

// NativeBalance reports the native value released to an account.
func (l *Ledger) NativeBalance(account common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if bal, ok := l.nativePayouts[account]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// ResolveWrapped returns the wrapped token for a home pair.
func (l *Ledger) ResolveWrapped(homeChainID uint64, homeAsset common.Address) (common.Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	wrapped, err := l.reg.ResolveWrapped(homeChainID, homeAsset)
	if err != nil {
		return common.Address{}, errors.Wrapf(ErrTokenDoesNotExist, "chain %d asset %s", homeChainID, homeAsset.Hex())
	}
	return wrapped, nil
}

// WrappedRecords enumerates all registered wrapped-asset records.
func (l *Ledger) WrappedRecords() []registry.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reg.Records()
}

func (l *Ledger) creditLocked(asset common.Address, amount *big.Int) {
	bal, ok := l.locked[asset]
	if !ok {
		bal = new(big.Int)
		l.locked[asset] = bal
	}
	bal.Add(bal, amount)
}

func (l *Ledger) creditNative(account common.Address, amount *big.Int) {
	bal, ok := l.nativePayouts[account]
	if !ok {
		bal = new(big.Int)
		l.nativePayouts[account] = bal
	}
	bal.Add(bal, amount)
}
