package refs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNumericValueIsNumeric(t *testing.T) {
	nv := ParseNumericValue("12-15")
	require.True(t, nv.IsNumeric())
	require.Equal(t, []uint32{12, 15}, nv.Nums())
}

func TestParseNumericValueWithRoman(t *testing.T) {
	nv := ParseNumericValue("xiv")
	require.True(t, nv.IsNumeric())
	require.Equal(t, []uint32{14}, nv.Nums())
}

func TestParseNumericValueNonNumeric(t *testing.T) {
	nv := ParseNumericValue("Appendix A")
	require.False(t, nv.IsNumeric())
}

func TestParseNumericValueEmpty(t *testing.T) {
	nv := ParseNumericValue("")
	require.False(t, nv.IsNumeric())
	require.Empty(t, nv.Tokens)
}
