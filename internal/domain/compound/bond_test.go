package compound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDelta_Thresholds(t *testing.T) {
	tests := []struct {
		delta float64
		want  BondType
	}{
		{0, BondNonpolarCovalent},
		{0.4, BondNonpolarCovalent},
		{0.41, BondPolarCovalent},
		{1.7, BondPolarCovalent},
		{1.71, BondIonic},
		{3.2, BondIonic},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyDelta(tt.delta), tt.delta)
	}
}

func TestClassifyBond_MaxPairwise(t *testing.T) {
	got := classifyBond(mustElements(t, "H", "C", "F"))
	require.NotNil(t, got.delta)
	assert.InDelta(t, 3.98-2.20, *got.delta, 1e-9)
	assert.Equal(t, BondMixed, got.bondType)

	got = classifyBond(mustElements(t, "C", "H", "O"))
	assert.Equal(t, BondPolarCovalent, got.bondType)
}

func TestClassifyBond_MissingData(t *testing.T) {
	got := classifyBond(mustElements(t, "O", "Lr"))
	assert.Equal(t, BondUnknown, got.bondType)
	assert.Nil(t, got.delta)
	assert.Equal(t, []string{"Lawrencium"}, got.missing)
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "", joinNames(nil))
	assert.Equal(t, "Helium", joinNames([]string{"Helium"}))
	assert.Equal(t, "Helium and Neon", joinNames([]string{"Helium", "Neon"}))
	assert.Equal(t, "Helium, Neon and Argon", joinNames([]string{"Helium", "Neon", "Argon"}))
}

func TestEnums_AreClosed(t *testing.T) {
	for _, l := range []Likelihood{LikelihoodLikely, LikelihoodPossible, LikelihoodUnlikely} {
		assert.True(t, l.IsValid())
	}
	assert.False(t, Likelihood("maybe").IsValid())
	for _, b := range []BondType{BondIonic, BondPolarCovalent, BondNonpolarCovalent, BondNone, BondUnknown, BondMixed} {
		assert.True(t, b.IsValid())
	}
	assert.False(t, BondType("metallic").IsValid())

	assert.True(t, LikelihoodLikely.AtLeast(LikelihoodPossible))
	assert.False(t, LikelihoodUnlikely.AtLeast(LikelihoodPossible))
}
