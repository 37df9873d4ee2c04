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
	metricEpochsClosed  = metrics.LazyLoadCounter("epochs_closed_total")
	metricEpochsSettled = metrics.LazyLoadCounter("epochs_settled_total")
	metricRevenue       = metrics.LazyLoadCounter("revenue_deposited_tokens_total")
	metricBlockReports  = metrics.LazyLoadCounter("block_reports_total")
)

// maybeAdvanceEpoch performs the lazy epoch rollover. Both trigger paths,
// revenue arrival and block-production reporting, must route through this
// single boundary test so that no two callers compute different current
// epochs in the same window. The engine mutex must be held.
func (s *Staker) maybeAdvanceEpoch() {
	now := s.now()
	if s.epochStart.IsZero() {
		s.epochStart = now
		return
	}
	if now.Sub(s.epochStart) <= s.cfg.EpochDuration {
		return
	}

	var totalBlocks uint64
	for _, n := range s.blockCounts[s.epochNumber] {
		totalBlocks += n
	}
	s.epochs[s.epochNumber] = &Epoch{
		Number:       s.epochNumber,
		TotalBlocks:  totalBlocks,
		TotalRevenue: s.revenue,
	}

	logger.Info("epoch closed", "epoch", s.epochNumber,
		"blocks", totalBlocks, "revenue", new(big.Int).Div(s.revenue, weiPerToken))

	s.epochNumber++
	s.epochStart = now
	s.revenue = big.NewInt(0)
	metricEpochsClosed().Add(1)
}

// RecordBlockProduced reports one produced block. Only the block-production
// coordinator may call it. Reporting the same block number twice for the
// same validator is proof of double signing and short-circuits into the
// slashing path with no further accounting.
func (s *Staker) RecordBlockProduced(caller, validator common.Address, blockNumber uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.coordinator {
		return ErrUnauthorized
	}
	if err := s.checkNotPaused(); err != nil {
		return err
	}
	val := s.validators[validator]
	if val == nil {
		return ErrNotRegistered
	}
	if !val.IsActive() {
		return ErrNotActive
	}

	key := blockKey{number: blockNumber, signer: validator}
	if _, seen := s.seenBlocks[key]; seen {
		logger.Warn("duplicate block signature detected", "validator", validator, "block", blockNumber)
		if _, err := s.slashLocked(validator, ReasonDoubleSigning); err != nil {
			return err
		}
		return nil
	}

	s.maybeAdvanceEpoch()

	s.seenBlocks[key] = struct{}{}
	val.LastBlockProposed = blockNumber
	val.BlocksProduced++

	counts := s.blockCounts[s.epochNumber]
	if counts == nil {
		counts = make(map[common.Address]uint64)
		s.blockCounts[s.epochNumber] = counts
	}
	counts[validator]++

	metricBlockReports().Add(1)
	return nil
}

// DepositRevenue adds revenue to the current epoch's accumulator, pulling
// the amount from the payer over the payment rail. Callable by any payer.
func (s *Staker) DepositRevenue(payer common.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("depositing revenue", "payer", payer, "amount", amount)

	if err := s.checkNotPaused(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	s.maybeAdvanceEpoch()
	s.revenue.Add(s.revenue, amount)

	if err := s.rail.Debit(payer, amount); err != nil {
		s.revenue.Sub(s.revenue, amount)
		logger.Info("revenue deposit failed", "payer", payer, "err", err)
		return errors.Wrap(ErrTransferFailed, err.Error())
	}

	metricRevenue().Add(new(big.Int).Div(amount, weiPerToken).Int64())
	logger.Info("revenue deposited", "payer", payer, "epoch", s.epochNumber,
		"amount", new(big.Int).Div(amount, weiPerToken))
	return nil
}

// FinalizeEpoch settles a closed epoch exactly once: it splits the epoch's
// revenue into the validator pool and the treasury share, credits active
// validators proportionally to the blocks they produced in that epoch and
// pays the treasury share out immediately. Integer division truncates; the
// sub-wei remainder of the pool stays undistributed by design.
func (s *Staker) FinalizeEpoch(number uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("finalizing epoch", "epoch", number)

	if err := s.checkNotPaused(); err != nil {
		return err
	}
	if number >= s.epochNumber {
		return ErrEpochNotClosed
	}
	ep := s.epochs[number]
	if ep == nil {
		return ErrEpochNotClosed
	}
	if ep.Distributed {
		return ErrEpochSettled
	}

	bps := int64(s.revenueShareBps())
	pool := new(big.Int).Mul(ep.TotalRevenue, big.NewInt(bps))
	pool.Div(pool, big.NewInt(bpsDenominator))
	treasuryShare := new(big.Int).Sub(ep.TotalRevenue, pool)

	// credit validators, remembering how to take it back
	type credit struct {
		addr   common.Address
		amount *big.Int
	}
	var credits []credit
	counts := s.blockCounts[number]
	if ep.TotalBlocks > 0 && pool.Sign() > 0 {
		totalBlocks := new(big.Int).SetUint64(ep.TotalBlocks)
		for _, addr := range s.activeSet {
			produced := counts[addr]
			if produced == 0 {
				continue
			}
			share := new(big.Int).Mul(pool, new(big.Int).SetUint64(produced))
			share.Div(share, totalBlocks)
			if share.Sign() == 0 {
				continue
			}
			val := s.validators[addr]
			val.PendingRewards.Add(val.PendingRewards, share)
			val.TotalEarned.Add(val.TotalEarned, share)
			credits = append(credits, credit{addr: addr, amount: share})
		}
	}

	if treasuryShare.Sign() > 0 {
		if err := s.rail.Credit(s.treasury, treasuryShare); err != nil {
			for _, c := range credits {
				val := s.validators[c.addr]
				val.PendingRewards.Sub(val.PendingRewards, c.amount)
				val.TotalEarned.Sub(val.TotalEarned, c.amount)
			}
			logger.Info("epoch settlement failed", "epoch", number, "err", err)
			return errors.Wrap(ErrTransferFailed, err.Error())
		}
	}

	ep.ValidatorShare = pool
	ep.TreasuryShare = treasuryShare
	ep.SettledAt = s.now()
	ep.Distributed = true
	// the per-validator counts are folded into credited balances now
	delete(s.blockCounts, number)

	metricEpochsSettled().Add(1)
	logger.Info("epoch settled", "epoch", number,
		"pool", new(big.Int).Div(pool, weiPerToken),
		"treasury", new(big.Int).Div(treasuryShare, weiPerToken),
		"credited", len(credits),
	)
	return nil
}

//
// Getters - no state change
//

// CurrentEpoch returns the current epoch number.
func (s *Staker) CurrentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epochNumber
}

// PendingRevenue returns the undistributed accumulator of the current epoch.
func (s *Staker) PendingRevenue() *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return new(big.Int).Set(s.revenue)
}

// GetEpoch returns a copy of a closed epoch's record.
func (s *Staker) GetEpoch(number uint64) (*Epoch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ep := s.epochs[number]
	if ep == nil {
		return nil, ErrEpochNotClosed
	}
	return ep.clone(), nil
}

// BlocksInEpoch returns the recorded block count of a validator within a
// not-yet-settled epoch.
func (s *Staker) BlocksInEpoch(number uint64, validator common.Address) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockCounts[number][validator]
}
