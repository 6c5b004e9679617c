package poi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyplanet-server/internal/resources"
	"tinyplanet-server/internal/ring"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(11, 94, 1.5, DefaultRules())
	require.NoError(t, err)
	b, err := Generate(11, 94, 1.5, DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, a.All(), b.All())
	assert.NotZero(t, a.Len())
}

func TestGenerateStaysOnRing(t *testing.T) {
	f, err := Generate(3, 50, 1.5, DefaultRules())
	require.NoError(t, err)

	for _, p := range f.All() {
		assert.GreaterOrEqual(t, p.Index, 0)
		assert.Less(t, p.Index, 50)
		assert.True(t, p.Kind.Valid())
	}
}

func TestGenerateZeroProbability(t *testing.T) {
	f, err := Generate(3, 200, 1.5, []Rule{{Kind: KindTree, Probability: 0, Health: 1}})
	require.NoError(t, err)
	assert.Zero(t, f.Len())
}

func TestGenerateRejectsBadRules(t *testing.T) {
	for _, r := range []Rule{
		{Kind: "gold", Probability: 0.5, Health: 1},
		{Kind: KindTree, Probability: 1.5, Health: 1},
		{Kind: KindTree, Probability: 0.5, Health: 0},
		{Kind: KindTree, Probability: 0.5, Health: 1, DropMin: 3, DropMax: 1},
	} {
		_, err := Generate(1, 10, 1, []Rule{r})
		assert.Error(t, err, "rule %+v", r)
	}
}

func TestFieldInRadius(t *testing.T) {
	f := NewField()
	f.Add(PointOfInterest{Index: 0, Kind: KindStone, Health: 5})
	f.Add(PointOfInterest{Index: 9, Kind: KindTree, Health: 5})
	f.Add(PointOfInterest{Index: 5, Kind: KindCopper, Health: 5})

	got := f.InRadius(ring.Space(10), 0, 1)
	require.Len(t, got, 2)
	assert.Equal(t, 9, got[0].Index)
	assert.Equal(t, 0, got[1].Index)

	assert.Len(t, f.InRadius(ring.Space(10), 0, 20), 3)
}

func TestFieldDamage(t *testing.T) {
	f := NewField()
	f.Add(PointOfInterest{Index: 4, Kind: KindTree, Health: 15})
	f.Add(PointOfInterest{Index: 4, Kind: KindStone, Health: 5})

	hit, ok := f.Damage(4, KindTree, 10)
	require.True(t, ok)
	assert.Equal(t, Hit{Kind: KindTree, Taken: 10, Health: 5}, hit)

	hit, ok = f.Damage(4, KindTree, 10)
	require.True(t, ok)
	assert.Equal(t, 5, hit.Taken)
	assert.True(t, hit.Depleted)

	assert.Equal(t, []PointOfInterest{{Index: 4, Kind: KindStone, Health: 5}}, f.At(4))

	_, ok = f.Damage(4, KindTree, 1)
	assert.False(t, ok)

	_, ok = f.Damage(4, KindStone, 5)
	require.True(t, ok)
	assert.Empty(t, f.At(4))
	assert.Zero(t, f.Len())
}

func TestKindResource(t *testing.T) {
	assert.Equal(t, resources.Wood, KindTree.Resource())
	assert.Equal(t, resources.Stone, KindStone.Resource())
	assert.Equal(t, resources.Copper, KindCopper.Resource())
}

func TestKindsIsCopy(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 3)
	kinds[0] = KindTree

	assert.Equal(t, KindStone, Kinds()[0])
}
