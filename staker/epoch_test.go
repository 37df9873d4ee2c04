// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBlockProduced(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 7))

	val, err := env.staker.GetValidator(val1)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), val.LastBlockProposed)
	assert.Equal(t, uint64(1), val.BlocksProduced)
	assert.Equal(t, uint64(1), env.staker.BlocksInEpoch(0, val1))
}

func TestRecordBlockProducedRestricted(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	assert.ErrorIs(t, env.staker.RecordBlockProduced(val1, val1, 7), ErrUnauthorized)
	assert.ErrorIs(t, env.staker.RecordBlockProduced(coordinatorAddr, val2, 7), ErrNotRegistered)
}

func TestDoubleSignReportTriggersSlash(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 2000)

	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 7))
	// same block number again: automatic full slash, no admin call involved
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 7))

	val, err := env.staker.GetValidator(val1)
	require.NoError(t, err)
	assert.Equal(t, StatusSlashed, val.Status)
	assert.Equal(t, ReasonDoubleSigning, val.SlashedWith)
	assert.Zero(t, val.Stake.Sign())
	assert.Equal(t, int64(2000), env.rail.creditedTo(treasuryAddr).Int64())

	// the duplicate report performed no accounting
	assert.Equal(t, uint64(1), val.BlocksProduced)
	assert.Equal(t, uint64(1), env.staker.BlocksInEpoch(0, val1))
	checkTotalsInvariant(t, env.staker)
}

func TestEpochLazyRollover(t *testing.T) {
	env := newTestEnv(t, nil) // 1h epochs
	env.register(t, val1, 1000)

	// first trigger only starts the clock
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 1))
	assert.Equal(t, uint64(0), env.staker.CurrentEpoch())

	// nothing advances while the window is open
	env.advance(30 * time.Minute)
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 2))
	assert.Equal(t, uint64(0), env.staker.CurrentEpoch())

	// the boundary is observed as a side effect of the next trigger
	env.advance(31 * time.Minute)
	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(500)))
	assert.Equal(t, uint64(1), env.staker.CurrentEpoch())

	ep, err := env.staker.GetEpoch(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), ep.TotalBlocks)
	assert.Zero(t, ep.TotalRevenue.Sign(), "revenue deposited after the boundary belongs to the new epoch")
	assert.False(t, ep.Distributed)
	assert.Equal(t, int64(500), env.staker.PendingRevenue().Int64())
}

func TestBothTriggersShareTheRollover(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(100)))
	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 1))
	assert.Equal(t, uint64(1), env.staker.CurrentEpoch())

	// the block report landed in epoch 1, the revenue stayed in epoch 0
	ep, err := env.staker.GetEpoch(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), ep.TotalBlocks)
	assert.Equal(t, int64(100), ep.TotalRevenue.Int64())
	assert.Equal(t, uint64(1), env.staker.BlocksInEpoch(1, val1))
}

func TestDepositRevenue(t *testing.T) {
	env := newTestEnv(t, nil)

	require.NoError(t, env.staker.DepositRevenue(val1, big.NewInt(300)))
	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(200)))
	assert.Equal(t, int64(500), env.staker.PendingRevenue().Int64())
	assert.Equal(t, int64(300), env.rail.debits[val1].Int64())

	assert.ErrorIs(t, env.staker.DepositRevenue(val1, big.NewInt(0)), ErrInvalidAmount)
	assert.ErrorIs(t, env.staker.DepositRevenue(val1, nil), ErrInvalidAmount)
}

func TestDepositRevenueRailFailureRollsBack(t *testing.T) {
	env := newTestEnv(t, nil)

	env.rail.failDebit = true
	assert.ErrorIs(t, env.staker.DepositRevenue(val1, big.NewInt(300)), ErrTransferFailed)
	assert.Zero(t, env.staker.PendingRevenue().Sign())
}

// Revenue 1000 at a 50% ratio, blocks split 3/7: shares 150, 350, 500.
func TestFinalizeEpochSplitsProRata(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)
	env.register(t, val2, 1000)

	require.NoError(t, env.staker.DepositRevenue(val3, big.NewInt(1000)))
	for b := uint64(1); b <= 3; b++ {
		require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, b))
	}
	for b := uint64(4); b <= 10; b++ {
		require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val2, b))
	}

	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.DepositRevenue(val3, big.NewInt(1))) // close epoch 0
	require.NoError(t, env.staker.FinalizeEpoch(0))

	v1, err := env.staker.GetValidator(val1)
	require.NoError(t, err)
	v2, err := env.staker.GetValidator(val2)
	require.NoError(t, err)
	assert.Equal(t, int64(150), v1.PendingRewards.Int64())
	assert.Equal(t, int64(350), v2.PendingRewards.Int64())
	assert.Equal(t, int64(150), v1.TotalEarned.Int64())

	ep, err := env.staker.GetEpoch(0)
	require.NoError(t, err)
	assert.True(t, ep.Distributed)
	assert.Equal(t, int64(500), ep.ValidatorShare.Int64())
	assert.Equal(t, int64(500), ep.TreasuryShare.Int64())
	assert.Equal(t, int64(500), env.rail.creditedTo(treasuryAddr).Int64())
}

func TestFinalizeEpochExactlyOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(100)))
	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(1)))

	require.NoError(t, env.staker.FinalizeEpoch(0))
	assert.ErrorIs(t, env.staker.FinalizeEpoch(0), ErrEpochSettled)
}

func TestFinalizeEpochNotYetClosed(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.ErrorIs(t, env.staker.FinalizeEpoch(0), ErrEpochNotClosed)
	assert.ErrorIs(t, env.staker.FinalizeEpoch(5), ErrEpochNotClosed)
}

func TestFinalizeEpochWithoutBlocksPaysTreasuryOnly(t *testing.T) {
	env := newTestEnv(t, nil)

	require.NoError(t, env.staker.DepositRevenue(val1, big.NewInt(1000)))
	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.DepositRevenue(val1, big.NewInt(1)))
	require.NoError(t, env.staker.FinalizeEpoch(0))

	ep, err := env.staker.GetEpoch(0)
	require.NoError(t, err)
	assert.True(t, ep.Distributed)
	// with no producers the validator pool goes nowhere, only the treasury
	// share moves
	assert.Equal(t, int64(500), env.rail.creditedTo(treasuryAddr).Int64())
}

func TestFinalizeEpochTruncationLeavesDust(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)
	env.register(t, val2, 1000)
	env.register(t, val3, 1000)

	require.NoError(t, env.staker.DepositRevenue(ownerAddr, big.NewInt(1000)))
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 1))
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val2, 2))
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val3, 3))

	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.DepositRevenue(ownerAddr, big.NewInt(1)))
	require.NoError(t, env.staker.FinalizeEpoch(0))

	// 500/3 truncates to 166 each; 2 units of dust stay undistributed
	total := big.NewInt(0)
	for _, a := range env.staker.ActiveSet() {
		v, err := env.staker.GetValidator(a)
		require.NoError(t, err)
		assert.Equal(t, int64(166), v.PendingRewards.Int64())
		total.Add(total, v.PendingRewards)
	}
	assert.Equal(t, int64(498), total.Int64())
}

func TestFinalizeEpochSkipsDeactivatedValidators(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)
	env.register(t, val2, 1000)

	require.NoError(t, env.staker.DepositRevenue(val3, big.NewInt(1000)))
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 1))
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val2, 2))

	require.NoError(t, env.staker.Unregister(val1))

	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.DepositRevenue(val3, big.NewInt(1)))
	require.NoError(t, env.staker.FinalizeEpoch(0))

	// only the still-active producer is credited
	v1, err := env.staker.GetValidator(val1)
	require.NoError(t, err)
	v2, err := env.staker.GetValidator(val2)
	require.NoError(t, err)
	assert.Zero(t, v1.PendingRewards.Sign())
	assert.Equal(t, int64(250), v2.PendingRewards.Int64())
}

func TestFinalizeEpochRailFailureRollsBack(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(1000)))
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 1))

	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(1)))

	env.rail.failCredit = true
	assert.ErrorIs(t, env.staker.FinalizeEpoch(0), ErrTransferFailed)

	// no partial crediting, the epoch stays settleable
	val, err := env.staker.GetValidator(val1)
	require.NoError(t, err)
	assert.Zero(t, val.PendingRewards.Sign())
	assert.Zero(t, val.TotalEarned.Sign())
	ep, err := env.staker.GetEpoch(0)
	require.NoError(t, err)
	assert.False(t, ep.Distributed)

	env.rail.failCredit = false
	require.NoError(t, env.staker.FinalizeEpoch(0))
	val, err = env.staker.GetValidator(val1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), val.PendingRewards.Int64())
}

func TestFinalizeEpochUsesFeeConfig(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	require.NoError(t, env.staker.SetFeeConfig(ownerAddr, &fakeFeeConfig{bps: 8000}))
	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(1000)))
	require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, 1))

	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(1)))
	require.NoError(t, env.staker.FinalizeEpoch(0))

	ep, err := env.staker.GetEpoch(0)
	require.NoError(t, err)
	assert.Equal(t, int64(800), ep.ValidatorShare.Int64())
	assert.Equal(t, int64(200), ep.TreasuryShare.Int64())
}

func TestFinalizeEpochFeeConfigFailureFallsBack(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	require.NoError(t, env.staker.SetFeeConfig(ownerAddr, &fakeFeeConfig{err: assert.AnError}))
	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(1000)))

	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.DepositRevenue(val2, big.NewInt(1)))
	require.NoError(t, env.staker.FinalizeEpoch(0))

	ep, err := env.staker.GetEpoch(0)
	require.NoError(t, err)
	assert.Equal(t, int64(500), ep.ValidatorShare.Int64(), "locally configured default applies")
}

func TestEpochBlockTotalsMatchPerValidatorCounts(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)
	env.register(t, val2, 1000)

	for b := uint64(1); b <= 5; b++ {
		require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val1, b))
	}
	for b := uint64(6); b <= 9; b++ {
		require.NoError(t, env.staker.RecordBlockProduced(coordinatorAddr, val2, b))
	}
	perValidator := env.staker.BlocksInEpoch(0, val1) + env.staker.BlocksInEpoch(0, val2)

	env.advance(2 * time.Hour)
	require.NoError(t, env.staker.DepositRevenue(val3, big.NewInt(1)))

	ep, err := env.staker.GetEpoch(0)
	require.NoError(t, err)
	assert.Equal(t, perValidator, ep.TotalBlocks)
}
