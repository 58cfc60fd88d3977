package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// Domain events consumed by the off-chain relay. Each carries a unique
// ID for relay-side de-duplication and the full parameter set needed to
// build the next attestation without re-querying state.

type LockEvent struct {
	ID            string
	TargetChainID uint64
	Asset         common.Address
	Caller        common.Address
	Amount        *big.Int
	Payment       *big.Int
}

type ReleaseEvent struct {
	ID            string
	SourceChainID uint64
	Asset         common.Address
	Amount        *big.Int
	Receiver      common.Address
}

type MintEvent struct {
	ID       string
	Wrapped  common.Address
	Amount   *big.Int
	Receiver common.Address
}

type BurnEvent struct {
	ID       string
	Wrapped  common.Address
	Caller   common.Address
	Amount   *big.Int
	Receiver common.Address
}

type WrappedDeployedEvent struct {
	ID          string
	HomeChainID uint64
	HomeAsset   common.Address
	Wrapped     common.Address
	Name        string
	Symbol      string
}

// SubscribeLock sends a LockEvent for every successful lock.
func (l *Ledger) SubscribeLock(ch chan<- LockEvent) event.Subscription {
	return l.scope.Track(l.lockFeed.Subscribe(ch))
}

// SubscribeRelease sends a ReleaseEvent for every successful release.
func (l *Ledger) SubscribeRelease(ch chan<- ReleaseEvent) event.Subscription {
	return l.scope.Track(l.releaseFeed.Subscribe(ch))
}

// SubscribeMint sends a MintEvent for every successful mint.
func (l *Ledger) SubscribeMint(ch chan<- MintEvent) event.Subscription {
	return l.scope.Track(l.mintFeed.Subscribe(ch))
}

// SubscribeBurn sends a BurnEvent for every successful burn.
func (l *Ledger) SubscribeBurn(ch chan<- BurnEvent) event.Subscription {
	return l.scope.Track(l.burnFeed.Subscribe(ch))
}

// SubscribeWrappedDeployed sends a WrappedDeployedEvent whenever a new
// wrapped-asset class is created.
func (l *Ledger) SubscribeWrappedDeployed(ch chan<- WrappedDeployedEvent) event.Subscription {
	return l.scope.Track(l.deployFeed.Subscribe(ch))
}
