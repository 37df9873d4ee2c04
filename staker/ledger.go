// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/jeju-network/jeju-staking/metrics"
)

var (
	metricActiveValidators = metrics.LazyLoadGauge("active_validators_count")
	metricTotalStaked      = metrics.LazyLoadGauge("total_staked_tokens")
)

var weiPerToken = big.NewInt(1e18)

// Register admits a new validator into the active set, pulling the
// collateral in over the payment rail. A sticky-slashed record can never
// re-register; an exited record is reactivated and keeps its history.
func (s *Staker) Register(owner common.Address, validatorID uint64, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("registering validator", "owner", owner, "validatorID", validatorID, "amount", amount)

	if err := s.checkNotPaused(); err != nil {
		return err
	}

	prev := s.validators[owner]
	if prev != nil {
		switch prev.Status {
		case StatusActive:
			return ErrAlreadyRegistered
		case StatusSlashed:
			return ErrAlreadySlashed
		}
	}
	if amount == nil || amount.Cmp(s.cfg.MinStake) < 0 {
		return ErrStakeTooLow
	}
	if amount.Cmp(s.cfg.MaxStake) > 0 {
		return ErrStakeTooHigh
	}
	if len(s.activeSet) >= s.cfg.MaxValidators {
		return ErrActiveSetFull
	}
	if err := s.identity.Verify(owner, validatorID); err != nil {
		logger.Info("register rejected by identity check", "owner", owner, "err", err)
		return errors.Wrap(err, "identity")
	}

	val := &Validator{
		Address:         owner,
		ValidatorID:     validatorID,
		Stake:           new(big.Int).Set(amount),
		ReputationScore: s.fetchScore(owner),
		RegisteredAt:    s.now(),
		TotalEarned:     big.NewInt(0),
		PendingRewards:  big.NewInt(0),
		Status:          StatusActive,
		StatusChange:    s.now(),
	}
	if prev != nil {
		// reactivation keeps the cumulative counters and unclaimed rewards
		val.LastBlockProposed = prev.LastBlockProposed
		val.BlocksProduced = prev.BlocksProduced
		val.TotalEarned = new(big.Int).Set(prev.TotalEarned)
		val.PendingRewards = new(big.Int).Set(prev.PendingRewards)
	}

	s.validators[owner] = val
	s.activeSetAdd(owner)
	s.totalStaked.Add(s.totalStaked, amount)

	if err := s.rail.Debit(owner, amount); err != nil {
		s.activeSetRemove(owner)
		s.totalStaked.Sub(s.totalStaked, amount)
		if prev != nil {
			s.validators[owner] = prev
		} else {
			delete(s.validators, owner)
		}
		logger.Info("register failed", "owner", owner, "err", err)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	s.reportLedgerMetrics()
	logger.Info("registered validator", "owner", owner, "validatorID", validatorID)
	return nil
}

// Unregister deactivates the caller's validator and returns the full
// collateral over the payment rail.
func (s *Staker) Unregister(owner common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("unregistering validator", "owner", owner)

	if err := s.checkNotPaused(); err != nil {
		return err
	}
	val := s.validators[owner]
	if val == nil {
		return ErrNotRegistered
	}
	if !val.IsActive() {
		return ErrNotActive
	}

	prev := val.clone()
	stake := new(big.Int).Set(val.Stake)

	val.Status = StatusExited
	val.StatusChange = s.now()
	val.Stake = big.NewInt(0)
	s.activeSetRemove(owner)
	s.totalStaked.Sub(s.totalStaked, stake)

	if err := s.rail.Credit(owner, stake); err != nil {
		s.validators[owner] = prev
		s.activeSetAdd(owner)
		s.totalStaked.Add(s.totalStaked, stake)
		logger.Info("unregister failed", "owner", owner, "err", err)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	s.reportLedgerMetrics()
	logger.Info("unregistered validator", "owner", owner, "returned", new(big.Int).Div(stake, weiPerToken))
	return nil
}

// IncreaseStake adds collateral to an active validator.
func (s *Staker) IncreaseStake(owner common.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("increasing stake", "owner", owner, "amount", amount)

	if err := s.checkNotPaused(); err != nil {
		return err
	}
	val := s.validators[owner]
	if val == nil {
		return ErrNotRegistered
	}
	if !val.IsActive() {
		return ErrNotActive
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if new(big.Int).Add(val.Stake, amount).Cmp(s.cfg.MaxStake) > 0 {
		return ErrStakeTooHigh
	}

	val.Stake.Add(val.Stake, amount)
	s.totalStaked.Add(s.totalStaked, amount)

	if err := s.rail.Debit(owner, amount); err != nil {
		val.Stake.Sub(val.Stake, amount)
		s.totalStaked.Sub(s.totalStaked, amount)
		logger.Info("increase stake failed", "owner", owner, "err", err)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	s.reportLedgerMetrics()
	logger.Info("increased stake", "owner", owner)
	return nil
}

// DecreaseStake releases part of an active validator's collateral. The
// remainder must stay at or above the minimum; use Unregister to exit fully.
func (s *Staker) DecreaseStake(owner common.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("decreasing stake", "owner", owner, "amount", amount)

	if err := s.checkNotPaused(); err != nil {
		return err
	}
	val := s.validators[owner]
	if val == nil {
		return ErrNotRegistered
	}
	if !val.IsActive() {
		return ErrNotActive
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if new(big.Int).Sub(val.Stake, amount).Cmp(s.cfg.MinStake) < 0 {
		return ErrStakeTooLow
	}

	val.Stake.Sub(val.Stake, amount)
	s.totalStaked.Sub(s.totalStaked, amount)

	if err := s.rail.Credit(owner, amount); err != nil {
		val.Stake.Add(val.Stake, amount)
		s.totalStaked.Add(s.totalStaked, amount)
		logger.Info("decrease stake failed", "owner", owner, "err", err)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	s.reportLedgerMetrics()
	logger.Info("decreased stake", "owner", owner)
	return nil
}

//
// Active-set arena: dense array plus validator -> position index, removal
// swaps with the last element and truncates.
//

func (s *Staker) activeSetAdd(addr common.Address) {
	s.activeIndex[addr] = len(s.activeSet)
	s.activeSet = append(s.activeSet, addr)
}

func (s *Staker) activeSetRemove(addr common.Address) {
	pos, ok := s.activeIndex[addr]
	if !ok {
		return
	}
	last := len(s.activeSet) - 1
	if pos != last {
		moved := s.activeSet[last]
		s.activeSet[pos] = moved
		s.activeIndex[moved] = pos
	}
	s.activeSet = s.activeSet[:last]
	delete(s.activeIndex, addr)
}

func (s *Staker) reportLedgerMetrics() {
	metricActiveValidators().Set(int64(len(s.activeSet)))
	metricTotalStaked().Set(new(big.Int).Div(s.totalStaked, weiPerToken).Int64())
}

//
// Getters - no state change
//

// GetValidator returns a copy of the validator record.
func (s *Staker) GetValidator(addr common.Address) (*Validator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val := s.validators[addr]
	if val == nil {
		return nil, ErrNotRegistered
	}
	return val.clone(), nil
}

// ActiveSet lists the members of the active set in arena order.
func (s *Staker) ActiveSet() []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]common.Address, len(s.activeSet))
	copy(out, s.activeSet)
	return out
}

// ActiveCount returns the active-set size.
func (s *Staker) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activeSet)
}

// TotalStaked returns the tracked aggregate collateral of the active set.
func (s *Staker) TotalStaked() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.totalStaked)
}
