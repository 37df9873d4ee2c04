// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staker implements the validator stake, slashing and epoch
// revenue-distribution engine.
//
// All mutating operations run under a single engine mutex, so the system
// has one globally agreed order of effects. Ledger state is mutated
// strictly before any external transfer is attempted; if the transfer
// fails, the mutation is undone and the operation never happened from the
// ledger's point of view.
package staker

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

var logger = log.New("pkg", "staker")

// SetLogger replaces the package logger.
func SetLogger(l log.Logger) {
	logger = l
}

const (
	// MaxReputation is the top of the reputation-score scale (basis points).
	MaxReputation = uint32(10000)
	// NeutralReputation substitutes a failed or zero reputation lookup.
	NeutralReputation = MaxReputation / 2

	bpsDenominator = 10000
)

// Config carries the fixed engine parameters.
type Config struct {
	MinStake      *big.Int
	MaxStake      *big.Int
	MaxValidators int

	EpochDuration     time.Duration
	DowntimeThreshold uint64 // cumulative missed blocks triggering a downtime slash

	RevenueShareBps     uint32 // validator-pool share of epoch revenue, used when no fee config is set
	ReputationWeightBps uint32 // reputation contribution to the selection weight
}

// DefaultConfig returns the production parameters.
func DefaultConfig() *Config {
	return &Config{
		MinStake:            new(big.Int).Mul(big.NewInt(10_000), big.NewInt(1e18)),
		MaxStake:            new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18)),
		MaxValidators:       100,
		EpochDuration:       24 * time.Hour,
		DowntimeThreshold:   100,
		RevenueShareBps:     5000,
		ReputationWeightBps: 5000,
	}
}

func (c *Config) validate() error {
	if c.MinStake == nil || c.MaxStake == nil || c.MinStake.Sign() <= 0 {
		return errors.New("stake bounds not set")
	}
	if c.MinStake.Cmp(c.MaxStake) > 0 {
		return errors.New("min stake above max stake")
	}
	if c.MaxValidators <= 0 {
		return errors.New("max validators not set")
	}
	if c.EpochDuration <= 0 {
		return errors.New("epoch duration not set")
	}
	if c.RevenueShareBps > bpsDenominator || c.ReputationWeightBps > bpsDenominator {
		return errors.New("bps ratio above 100%")
	}
	return nil
}

// Externals bundles the collaborators the engine consumes.
type Externals struct {
	Identity   Identity
	Reputation Reputation
	FeeConfig  FeeConfig // optional, overrides Config.RevenueShareBps
	Rail       PaymentRail
	Events     EventStore

	Now func() time.Time // optional clock, defaults to time.Now
}

// Staker is the engine facade. One instance owns the validator table, the
// active set, the epoch accounting state and the slashing log reference.
type Staker struct {
	mu  sync.RWMutex
	cfg Config

	owner       common.Address
	coordinator common.Address
	treasury    common.Address
	paused      bool

	identity   Identity
	reputation Reputation
	feeConfig  FeeConfig
	rail       PaymentRail
	events     EventStore

	// stake ledger
	validators  map[common.Address]*Validator
	activeSet   []common.Address
	activeIndex map[common.Address]int // validator -> position in activeSet
	totalStaked *big.Int

	// epoch accounting
	epochNumber uint64
	epochStart  time.Time // zero until the first trigger arrives
	revenue     *big.Int  // accumulator of the current epoch
	blockCounts map[uint64]map[common.Address]uint64
	epochs      map[uint64]*Epoch
	seenBlocks  map[blockKey]struct{}

	now func() time.Time
}

// New creates an engine instance. owner gates administrative calls,
// coordinator gates block-production reports, treasury receives slashed
// collateral and the residual revenue share.
func New(cfg *Config, owner, coordinator, treasury common.Address, ext *Externals) (*Staker, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if ext == nil || ext.Identity == nil || ext.Reputation == nil || ext.Rail == nil || ext.Events == nil {
		return nil, errors.New("missing external collaborator")
	}
	now := ext.Now
	if now == nil {
		now = time.Now
	}

	return &Staker{
		cfg:         *cfg,
		owner:       owner,
		coordinator: coordinator,
		treasury:    treasury,
		identity:    ext.Identity,
		reputation:  ext.Reputation,
		feeConfig:   ext.FeeConfig,
		rail:        ext.Rail,
		events:      ext.Events,
		validators:  make(map[common.Address]*Validator),
		activeIndex: make(map[common.Address]int),
		totalStaked: big.NewInt(0),
		revenue:     big.NewInt(0),
		blockCounts: make(map[uint64]map[common.Address]uint64),
		epochs:      make(map[uint64]*Epoch),
		seenBlocks:  make(map[blockKey]struct{}),
		now:         now,
	}, nil
}

//
// Administrative operations - owner only, allowed while paused
//

// SetTreasury changes the treasury recipient.
func (s *Staker) SetTreasury(caller, treasury common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	s.treasury = treasury
	logger.Info("treasury updated", "treasury", treasury)
	return nil
}

// SetFeeConfig changes the external fee-configuration reference. A nil
// value falls back to the locally configured revenue share.
func (s *Staker) SetFeeConfig(caller common.Address, fc FeeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	s.feeConfig = fc
	logger.Info("fee config updated", "set", fc != nil)
	return nil
}

// SetRevenueShareBps changes the default validator-pool ratio.
func (s *Staker) SetRevenueShareBps(caller common.Address, bps uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	if bps > bpsDenominator {
		return errors.Wrap(ErrInvalidAmount, "revenue share above 100%")
	}
	s.cfg.RevenueShareBps = bps
	logger.Info("revenue share updated", "bps", bps)
	return nil
}

// Pause rejects new mutating calls until Unpause.
func (s *Staker) Pause(caller common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	s.paused = true
	logger.Warn("staking paused")
	return nil
}

// Unpause re-enables mutating calls.
func (s *Staker) Unpause(caller common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrUnauthorized
	}
	s.paused = false
	logger.Info("staking unpaused")
	return nil
}

// checkNotPaused must be called with the engine mutex held.
func (s *Staker) checkNotPaused() error {
	if s.paused {
		return ErrPaused
	}
	return nil
}

//
// Getters - no state change
//

// Treasury returns the current treasury recipient.
func (s *Staker) Treasury() common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treasury
}

// Paused reports whether mutating calls are rejected.
func (s *Staker) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// revenueShareBps resolves the validator-pool ratio, preferring the fee
// configuration collaborator when present and sane.
func (s *Staker) revenueShareBps() uint32 {
	if s.feeConfig != nil {
		bps, err := s.feeConfig.RevenueShareBps()
		if err == nil && bps <= bpsDenominator {
			return bps
		}
		logger.Warn("fee config lookup failed, using default", "err", err, "bps", bps)
	}
	return s.cfg.RevenueShareBps
}

// fetchScore pulls a reputation score with the deterministic neutral
// fallback: failures and zero scores map to NeutralReputation, oversized
// scores are capped at MaxReputation.
func (s *Staker) fetchScore(addr common.Address) uint32 {
	score, err := s.reputation.Score(addr)
	if err != nil || score == 0 {
		return NeutralReputation
	}
	if score > MaxReputation {
		return MaxReputation
	}
	return score
}
