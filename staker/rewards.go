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

var metricRewardsClaimed = metrics.LazyLoadCounter("rewards_claimed_tokens_total")

// ClaimRewards pays the caller's pending reward balance out. The balance is
// zeroed before the external payment is attempted, so a re-entrant payee
// can never observe a claimable balance twice; a failed payment restores it
// and the call never happened. Deactivated validators may still claim what
// they earned while active.
func (s *Staker) ClaimRewards(owner common.Address) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("claiming rewards", "owner", owner)

	if err := s.checkNotPaused(); err != nil {
		return nil, err
	}
	val := s.validators[owner]
	if val == nil {
		return nil, ErrNotRegistered
	}
	if val.PendingRewards.Sign() == 0 {
		return nil, ErrNothingToClaim
	}

	amount := val.PendingRewards
	val.PendingRewards = big.NewInt(0)

	if err := s.rail.Credit(owner, amount); err != nil {
		val.PendingRewards = amount
		logger.Info("claim failed", "owner", owner, "err", err)
		return nil, errors.Wrap(ErrTransferFailed, err.Error())
	}

	metricRewardsClaimed().Add(new(big.Int).Div(amount, weiPerToken).Int64())
	logger.Info("rewards claimed", "owner", owner, "amount", new(big.Int).Div(amount, weiPerToken))
	return new(big.Int).Set(amount), nil
}
