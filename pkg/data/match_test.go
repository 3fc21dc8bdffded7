package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDrugName(t *testing.T) {
	tests := map[string]string{
		"Metformin Hydrochloride":    "metformin",
		"DICLOFENAC SODIUM":          "diclofenac",
		"amoxicillin  trihydrate  ":  "amoxicillin trihydrate",
		"Doxycycline Hyclate":        "doxycycline hyclate",
		"Atorvastatin Calcium":       "atorvastatin",
		"Morphine Sulfate Dihydrate": "morphine",
		"aspirin":                    "aspirin",
		"":                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDrugName(in), "input %q", in)
	}
}

func TestNameVariations(t *testing.T) {
	v := NameVariations("Paracetamol")
	assert.Contains(t, v, "paracetamol")
	assert.Contains(t, v, "acetaminophen")

	// reverse direction works too
	v = NameVariations("acetaminophen")
	assert.Contains(t, v, "paracetamol")

	v = NameVariations("ibuprofen")
	assert.Equal(t, []string{"ibuprofen"}, v)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("aspirin", "aspirin"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))

	// one character off in an 11/10 letter pair stays above threshold
	s := Similarity("amoxicillin", "amoxicilin")
	assert.Greater(t, s, similarityThreshold)
	assert.Less(t, s, 1.0)
}

func TestMatchDrugName(t *testing.T) {
	candidates := []string{"acetaminophen", "isoniazid", "amoxicillin", "aspirin"}

	got, ok := MatchDrugName("Acetaminophen", candidates)
	require.True(t, ok)
	assert.Equal(t, "acetaminophen", got)

	// synonym
	got, ok = MatchDrugName("paracetamol", candidates)
	require.True(t, ok)
	assert.Equal(t, "acetaminophen", got)

	// salt suffix
	got, ok = MatchDrugName("Aspirin Sodium", candidates)
	require.True(t, ok)
	assert.Equal(t, "aspirin", got)

	// fuzzy
	got, ok = MatchDrugName("amoxicilin", candidates)
	require.True(t, ok)
	assert.Equal(t, "amoxicillin", got)

	_, ok = MatchDrugName("warfarin", candidates)
	assert.False(t, ok)
}

func TestMatchDrugNameLengthPrefilter(t *testing.T) {
	// a similar name whose length differs by more than the prefilter
	// never reaches the fuzzy scan
	_, ok := MatchDrugName("isoniazid", []string{"isoniazid extended release"})
	assert.False(t, ok)
}
