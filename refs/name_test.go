package refs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPersonNameParticleSplitting(t *testing.T) {
	tests := []struct {
		name                string
		family, given       string
		wantFamily, wantNDP string
		wantGiven, wantDP   string
	}{
		{
			name:       "leading lowercase particle run",
			family:     "van der Vlist",
			given:      "Anne",
			wantFamily: "Vlist",
			wantNDP:    "van der",
			wantGiven:  "Anne",
		},
		{
			name:       "trailing dropping particle in given",
			given:      "François Hédelin d'",
			wantGiven:  "François Hédelin",
			wantDP:     "d’",
			wantFamily: "Diderot",
			family:     "Diderot",
		},
		{
			name:       "no particle, plain name",
			family:     "Smith",
			given:      "John",
			wantFamily: "Smith",
			wantGiven:  "John",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pn := NewPersonName(tt.family, tt.given, "", "", "", false, false)
			require.Equal(t, tt.wantFamily, pn.Family)
			require.Equal(t, tt.wantGiven, pn.Given)
			require.Equal(t, tt.wantNDP, pn.NonDroppingParticle)
			require.Equal(t, tt.wantDP, pn.DroppingParticle)
		})
	}
}

func TestNewPersonNameIsFixedPoint(t *testing.T) {
	pn := NewPersonName("van der Vlist", "François Hédelin d'", "", "", "", false, false)
	// Re-ingesting the already-split fields must not change them further
	// (spec.md §8 invariant).
	again := NewPersonName(pn.Family, pn.Given, pn.NonDroppingParticle, pn.DroppingParticle, pn.Suffix, pn.CommaSuffix, pn.StaticParticles)
	require.Equal(t, pn, again)
}

func TestNewPersonNameStaticParticlesDisablesSplit(t *testing.T) {
	pn := NewPersonName("van Gogh", "Vincent", "", "", "", false, true)
	require.Equal(t, "van Gogh", pn.Family)
	require.Empty(t, pn.NonDroppingParticle)
}

func TestNewPersonNameSuffixExtraction(t *testing.T) {
	pn := NewPersonName("Smith", "John, Jr.", "", "", "", false, false)
	require.Equal(t, "John", pn.Given)
	require.Equal(t, "Jr.", pn.Suffix)
	require.False(t, pn.CommaSuffix)

	pn2 := NewPersonName("Smith", "John,, Jr.", "", "", "", false, false)
	require.True(t, pn2.CommaSuffix)
}

func TestNewPersonNameEtAlNotExtractedAsSuffix(t *testing.T) {
	pn := NewPersonName("Smith", "John, et al", "", "", "", false, false)
	require.Empty(t, pn.Suffix)
	require.Equal(t, "John, et al", pn.Given)
}

func TestApostropheNormalization(t *testing.T) {
	pn := NewPersonName("O'Brien", "Mary", "", "", "", false, true)
	require.Equal(t, "O’Brien", pn.Family)
}

func TestIsLatinCyrillicScriptDetection(t *testing.T) {
	require.True(t, isLatinCyrillic("Müller"))
	require.True(t, isLatinCyrillic("Чехов"))
	require.False(t, isLatinCyrillic("田中"))
}
