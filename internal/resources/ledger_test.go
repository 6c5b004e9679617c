package resources

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrySpendDeducts(t *testing.T) {
	l := NewLedger(map[Resource]int{Wood: 10, Stone: 3})

	require.NoError(t, l.TrySpend([]Cost{{Wood, 4}, {Stone, 3}}))
	assert.Equal(t, 6, l.Balance(Wood))
	assert.Equal(t, 0, l.Balance(Stone))
}

func TestTrySpendLeavesBalancesOnShortfall(t *testing.T) {
	l := NewLedger(map[Resource]int{Wood: 10, Stone: 1, Copper: 0})
	before := l.Snapshot()

	err := l.TrySpend([]Cost{{Wood, 2}, {Stone, 4}, {Copper, 1}})

	var insufficient *InsufficientError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, Stone, insufficient.Resource)
	assert.Equal(t, 3, insufficient.Shortfall)
	assert.Equal(t, before, l.Snapshot())
}

func TestTrySpendSumsRepeatedLines(t *testing.T) {
	l := NewLedger(map[Resource]int{Wood: 5})

	err := l.TrySpend([]Cost{{Wood, 3}, {Wood, 3}})

	var insufficient *InsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Shortfall)
	assert.Equal(t, 5, l.Balance(Wood))
}

func TestTrySpendRefusesNegativeLines(t *testing.T) {
	l := NewLedger(map[Resource]int{Wood: 100, Stone: 4})

	err := l.TrySpend([]Cost{{Stone, 1}, {Wood, -50}})
	assert.ErrorIs(t, err, ErrNegativeCost)
	assert.Equal(t, 100, l.Balance(Wood))
	assert.Equal(t, 4, l.Balance(Stone))

	assert.ErrorIs(t, l.CanAfford([]Cost{{Copper, -1}}), ErrNegativeCost)
	assert.Panics(t, func() { l.Remove(Wood, -1) })
}

func TestAllIsCopy(t *testing.T) {
	first := All()
	first[0] = Copper

	assert.Equal(t, []Resource{Wood, Stone, Copper}, All())
}

func TestTrySpendNothing(t *testing.T) {
	var l Ledger
	assert.NoError(t, l.TrySpend(nil))
}

func TestAddAndRemove(t *testing.T) {
	var l Ledger
	l.Add(Copper, 7)
	l.Remove(Copper, 2)
	assert.Equal(t, 5, l.Balance(Copper))

	assert.Panics(t, func() { l.Remove(Copper, 6) })
}

func TestSnapshotIsCopy(t *testing.T) {
	l := NewLedger(map[Resource]int{Wood: 1})
	snap := l.Snapshot()
	snap[Wood] = 100

	assert.Equal(t, 1, l.Balance(Wood))
	assert.Equal(t, map[Resource]int{Wood: 1, Stone: 0, Copper: 0}, l.Snapshot())
}

func TestResourceText(t *testing.T) {
	data, err := json.Marshal(map[Resource]int{Copper: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"copper":2}`, string(data))

	var c Cost
	require.NoError(t, json.Unmarshal([]byte(`{"resource":"stone","amount":3}`), &c))
	assert.Equal(t, Cost{Stone, 3}, c)

	assert.Error(t, json.Unmarshal([]byte(`{"resource":"gold","amount":3}`), &c))
}
