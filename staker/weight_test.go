// Copyright (c) 2026 The Jeju Network developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionWeightBlendsStakeAndReputation(t *testing.T) {
	env := newTestEnv(t, nil) // 50/50 split

	env.reputation.scores[val1] = 8000
	env.register(t, val1, 1000)

	// 1000*0.5 + 1000*0.5*0.8 = 900
	assert.Equal(t, int64(900), env.staker.SelectionWeight(val1).Int64())
}

func TestSelectionWeightInactiveIsZero(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Zero(t, env.staker.SelectionWeight(val1).Sign())

	env.register(t, val1, 1000)
	require.NoError(t, env.staker.Unregister(val1))
	assert.Zero(t, env.staker.SelectionWeight(val1).Sign())
}

func TestSelectionWeightDegradedReputation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	// lookup failure and zero score both map to the neutral default:
	// 1000*0.5 + 1000*0.5*0.5 = 750
	env.reputation.err = assert.AnError
	assert.Equal(t, int64(750), env.staker.SelectionWeight(val1).Int64())

	env.reputation.err = nil
	env.reputation.scores[val1] = 0
	assert.Equal(t, int64(750), env.staker.SelectionWeight(val1).Int64())
}

func TestSelectionWeightCapsOversizedScore(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	env.reputation.scores[val1] = 25000
	// capped at the scale maximum: 1000*0.5 + 1000*0.5*1.0
	assert.Equal(t, int64(1000), env.staker.SelectionWeight(val1).Int64())
}

func TestUpdateReputation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, val1, 1000)

	env.reputation.scores[val1] = 9000
	require.NoError(t, env.staker.UpdateReputation(val1))

	val, err := env.staker.GetValidator(val1)
	require.NoError(t, err)
	assert.Equal(t, uint32(9000), val.ReputationScore)

	assert.ErrorIs(t, env.staker.UpdateReputation(val2), ErrNotRegistered)

	require.NoError(t, env.staker.Unregister(val1))
	assert.ErrorIs(t, env.staker.UpdateReputation(val1), ErrNotActive)
}

func TestLeaders(t *testing.T) {
	env := newTestEnv(t, nil)

	env.reputation.scores[val1] = 8000
	env.register(t, val1, 1000)
	env.register(t, val2, 2000)

	leaders := env.staker.Leaders()
	require.Len(t, leaders, 2)
	assert.Equal(t, val1, leaders[0].Address)
	assert.Equal(t, int64(900), leaders[0].Weight.Int64())
	assert.Equal(t, val2, leaders[1].Address)
	// neutral reputation: 2000*0.5 + 2000*0.5*0.5
	assert.Equal(t, int64(1500), leaders[1].Weight.Int64())
}
