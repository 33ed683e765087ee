package refs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDateCompareLessSpecificSortsFirst(t *testing.T) {
	require.True(t, (Date{Year: 2000}).Compare(Date{Year: 2001}) < 0)
	require.True(t, (Date{Year: 2000}).Compare(Date{Year: 2000, Month: 5}) < 0)
	require.True(t, (Date{Year: 2000, Month: 5}).Compare(Date{Year: 2000, Month: 5, Day: 1}) < 0)
}

func TestDateCompareBCESortsBeforeCE(t *testing.T) {
	require.True(t, (Date{Year: -100}).Compare(Date{Year: 1}) < 0)
}

func TestDateSeason(t *testing.T) {
	d := Date{Year: 2020, Month: 14}
	require.Equal(t, SeasonSummer, d.AsSeason())
	require.False(t, d.HasMonth())
}

func TestParseDateOrRangeShapes(t *testing.T) {
	single, err := ParseDateOrRange(map[string]interface{}{
		"date-parts": []interface{}{[]interface{}{2020, 3, 15}},
	})
	require.NoError(t, err)
	require.Equal(t, DateSingle, single.Kind)
	require.EqualValues(t, 2020, single.Single.Year)
	require.EqualValues(t, 3, single.Single.Month)

	rng, err := ParseDateOrRange(map[string]interface{}{
		"date-parts": []interface{}{
			[]interface{}{2020},
			[]interface{}{2021},
		},
	})
	require.NoError(t, err)
	require.Equal(t, DateRange, rng.Kind)

	lit, err := ParseDateOrRange(map[string]interface{}{"literal": "circa 1800"})
	require.NoError(t, err)
	require.Equal(t, DateLiteral, lit.Kind)

	yearSeason, err := ParseDateOrRange(map[string]interface{}{"year": "1999", "season": 1})
	require.NoError(t, err)
	require.EqualValues(t, 1999, yearSeason.Single.Year)
	require.Equal(t, SeasonSpring, yearSeason.Single.AsSeason())
}

func TestParseDateOrRangeMonthZeroIsAbsent(t *testing.T) {
	d, err := ParseDateOrRange(map[string]interface{}{
		"date-parts": []interface{}{[]interface{}{2020}},
	})
	require.NoError(t, err)
	require.False(t, d.Single.HasMonth())
}
