// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Leader is one active-set entry with its current selection weight.
type Leader struct {
	Address common.Address
	Stake   *big.Int
	Weight  *big.Int
}

// SelectionWeight blends collateral and reputation into the leader-selection
// weight:
//
//	weight = stake*(1-R) + stake*R*score/maxScore
//
// with R the configured reputation weight. Inactive validators weigh zero.
// The reputation lookup is live, with the deterministic neutral fallback,
// so the weight stays computable while the reputation service is degraded.
func (s *Staker) SelectionWeight(validator common.Address) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectionWeightLocked(validator)
}

func (s *Staker) selectionWeightLocked(validator common.Address) *big.Int {
	val := s.validators[validator]
	if val == nil || !val.IsActive() {
		return big.NewInt(0)
	}

	score := s.fetchScore(validator)
	r := int64(s.cfg.ReputationWeightBps)

	base := new(big.Int).Mul(val.Stake, big.NewInt(bpsDenominator-r))
	base.Div(base, big.NewInt(bpsDenominator))

	rep := new(big.Int).Mul(val.Stake, big.NewInt(r))
	rep.Mul(rep, big.NewInt(int64(score)))
	rep.Div(rep, big.NewInt(bpsDenominator*int64(MaxReputation)))

	return base.Add(base, rep)
}

// UpdateReputation refreshes the cached reputation score from the
// collaborator, using the same neutral fallback as the weight calculation.
func (s *Staker) UpdateReputation(validator common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

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

	val.ReputationScore = s.fetchScore(validator)
	logger.Debug("reputation refreshed", "validator", validator, "score", val.ReputationScore)
	return nil
}

// Leaders lists the active set with selection weights, in arena order.
func (s *Staker) Leaders() []Leader {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leaders := make([]Leader, 0, len(s.activeSet))
	for _, addr := range s.activeSet {
		val := s.validators[addr]
		leaders = append(leaders, Leader{
			Address: addr,
			Stake:   new(big.Int).Set(val.Stake),
			Weight:  s.selectionWeightLocked(addr),
		})
	}
	return leaders
}
