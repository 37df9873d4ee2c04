// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/jeju-network/jeju-staking/metrics"
	"github.com/jeju-network/jeju-staking/slashdb"
)

var metricSlashes = metrics.LazyLoadCounterVec("slashes_total", []string{"reason"})

// severityBps maps a slashing reason to the fraction of the current
// collateral removed, in basis points.
var severityBps = map[Reason]uint32{
	ReasonDoubleSigning: 10000,
	ReasonCensorship:    5000,
	ReasonDowntime:      1000,
	ReasonGovernanceBan: 10000,
}

// stickyReasons mark the validator permanently slashed, with no unban path
// inside this engine.
var stickyReasons = map[Reason]bool{
	ReasonDoubleSigning: true,
	ReasonGovernanceBan: true,
}

// minProofSize is a cheap sanity check on the evidence payload, not a
// fraud-proof verification; deeper checks belong to the governance layer.
var minProofSize = map[Reason]int{
	ReasonDoubleSigning: 130, // two 65-byte signatures over the same block
	ReasonCensorship:    65,
	ReasonDowntime:      8,
	ReasonGovernanceBan: 0, // governance decision carries no evidence payload
}

// Slash is the administrative entry point for punitive stake removal.
func (s *Staker) Slash(caller, validator common.Address, reason Reason, proof []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("slashing validator", "validator", validator, "reason", ReasonName(reason))

	if caller != s.owner {
		return ErrUnauthorized
	}
	if err := s.checkNotPaused(); err != nil {
		return err
	}
	minSize, known := minProofSize[reason]
	if !known {
		return errors.Wrap(ErrBadProof, "unknown reason")
	}
	if len(proof) < minSize {
		return errors.Wrapf(ErrBadProof, "need at least %d bytes", minSize)
	}

	_, err := s.slashLocked(validator, reason)
	return err
}

// slashLocked removes collateral for the given reason and transfers it to
// the treasury. It is shared by the administrative path, the double-sign
// short circuit and the downtime trigger. The engine mutex must be held.
//
// If the post-slash remainder falls below the minimum stake the validator
// is deactivated and the remainder is forfeited to the treasury as well,
// rather than staying locked in an inactive record.
func (s *Staker) slashLocked(validator common.Address, reason Reason) (*big.Int, error) {
	val := s.validators[validator]
	if val == nil {
		return nil, ErrNotRegistered
	}
	if val.IsSlashed() {
		return nil, ErrAlreadySlashed
	}
	if !val.IsActive() {
		return nil, ErrNotActive
	}

	stake := new(big.Int).Set(val.Stake)
	amount := new(big.Int).Mul(stake, big.NewInt(int64(severityBps[reason])))
	amount.Div(amount, big.NewInt(bpsDenominator))
	remainder := new(big.Int).Sub(stake, amount)

	forfeit := amount
	deactivate := stickyReasons[reason] || remainder.Cmp(s.cfg.MinStake) < 0
	if deactivate {
		forfeit = stake
	}

	prev := val.clone()
	val.Stake = new(big.Int).Sub(stake, forfeit)
	val.BlocksMissed = 0
	if deactivate {
		if stickyReasons[reason] {
			val.Status = StatusSlashed
			val.SlashedWith = reason
		} else {
			val.Status = StatusExited
		}
		val.StatusChange = s.now()
		s.activeSetRemove(validator)
	}
	s.totalStaked.Sub(s.totalStaked, forfeit)

	undo := func() {
		s.validators[validator] = prev
		if deactivate {
			s.activeSetAdd(validator)
		}
		s.totalStaked.Add(s.totalStaked, forfeit)
	}

	seq, err := s.events.Append(&slashdb.Event{
		Validator: validator,
		Reason:    reason,
		Amount:    forfeit,
		Timestamp: s.now().Unix(),
	})
	if err != nil {
		undo()
		logger.Error("slash event append failed", "validator", validator, "err", err)
		return nil, errors.Wrap(err, "event store")
	}

	if err := s.rail.Credit(s.treasury, forfeit); err != nil {
		if rmErr := s.events.Remove(seq); rmErr != nil {
			logger.Error("slash event compensation failed", "seq", seq, "err", rmErr)
		}
		undo()
		logger.Info("slash failed", "validator", validator, "err", err)
		return nil, errors.Wrap(ErrTransferFailed, err.Error())
	}

	metricSlashes().AddWithLabel(1, map[string]string{"reason": ReasonName(reason)})
	s.reportLedgerMetrics()
	logger.Warn("slashed validator",
		"validator", validator,
		"reason", ReasonName(reason),
		"amount", new(big.Int).Div(forfeit, weiPerToken),
		"deactivated", deactivate,
	)
	return forfeit, nil
}

// CheckDowntime accumulates the gap between the current block and the last
// block the validator proposed, and fires a single downtime slash once the
// missed-block counter exceeds the configured threshold. Callable by
// anyone. Returns whether a slash fired.
func (s *Staker) CheckDowntime(validator common.Address, currentBlock uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("checking downtime", "validator", validator, "currentBlock", currentBlock)

	if err := s.checkNotPaused(); err != nil {
		return false, err
	}
	val := s.validators[validator]
	if val == nil {
		return false, ErrNotRegistered
	}
	if val.IsSlashed() {
		return false, ErrAlreadySlashed
	}
	if !val.IsActive() {
		return false, ErrNotActive
	}
	if currentBlock < val.LastBlockProposed {
		return false, errors.Wrap(ErrInvalidAmount, "current block behind last proposal")
	}

	prevMissed := val.BlocksMissed
	val.BlocksMissed += currentBlock - val.LastBlockProposed
	if val.BlocksMissed <= s.cfg.DowntimeThreshold {
		return false, nil
	}

	if _, err := s.slashLocked(validator, ReasonDowntime); err != nil {
		// slashLocked may have swapped the record for its own snapshot
		s.validators[validator].BlocksMissed = prevMissed
		return false, err
	}
	return true, nil
}
