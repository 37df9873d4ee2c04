// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import "github.com/pkg/errors"

// Every operation either completes with its effects fully applied or fails
// with one of these causes and zero observable state change.
var (
	// identity errors
	ErrUnauthorized  = errors.New("caller not authorized")
	ErrNotRegistered = errors.New("validator not registered")

	// capacity errors
	ErrActiveSetFull = errors.New("active set is full")

	// bounds errors
	ErrStakeTooLow   = errors.New("stake below minimum")
	ErrStakeTooHigh  = errors.New("stake above maximum")
	ErrInvalidAmount = errors.New("amount must be positive")

	// state errors
	ErrAlreadyRegistered = errors.New("validator already registered")
	ErrNotActive         = errors.New("validator not active")
	ErrAlreadySlashed    = errors.New("validator already slashed")
	ErrEpochNotClosed    = errors.New("epoch not yet closed")
	ErrEpochSettled      = errors.New("epoch already settled")
	ErrNothingToClaim    = errors.New("no pending rewards")
	ErrPaused            = errors.New("staking is paused")

	// proof errors
	ErrBadProof = errors.New("malformed slashing proof")

	// transfer errors
	ErrTransferFailed = errors.New("external transfer failed")
)
