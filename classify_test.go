package fitsio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyHDUPrimary(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "SIMPLE", Value: LogicalValue(true)},
		Card{Keyword: "BITPIX", Value: IntValue(16)},
		Card{Keyword: "NAXIS", Value: IntValue(0)},
	)
	kind, err := classifyHDU(cl, true)
	require.NoError(t, err)
	require.Equal(t, KindPrimaryImage, kind)
}

func TestClassifyHDURandomGroups(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "SIMPLE", Value: LogicalValue(true)},
		Card{Keyword: "BITPIX", Value: IntValue(16)},
		Card{Keyword: "NAXIS", Value: IntValue(1)},
		Card{Keyword: "NAXIS1", Value: IntValue(0)},
		Card{Keyword: "GROUPS", Value: LogicalValue(true)},
		Card{Keyword: "PCOUNT", Value: IntValue(3)},
		Card{Keyword: "GCOUNT", Value: IntValue(1)},
	)
	kind, err := classifyHDU(cl, true)
	require.NoError(t, err)
	require.Equal(t, KindRandomGroups, kind)
}

func TestClassifyHDUExtensions(t *testing.T) {
	cases := map[string]HDUKind{
		"IMAGE":    KindImageExtension,
		"TABLE":    KindASCIITable,
		"BINTABLE": KindBinaryTable,
		"FOOBAR":   KindOther,
	}
	for xt, want := range cases {
		cl := buildCardList(Card{Keyword: "XTENSION", Value: StringValue(xt)})
		kind, err := classifyHDU(cl, false)
		require.NoError(t, err)
		require.Equal(t, want, kind, xt)
	}
}

func TestValidateMandatoryKeywordsMissing(t *testing.T) {
	cl := buildCardList(Card{Keyword: "SIMPLE", Value: LogicalValue(true)})
	issues := validateMandatoryKeywords(cl, KindPrimaryImage)
	require.NotEmpty(t, issues)
}

func TestAxesAndBitpixInvalidBitpix(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "BITPIX", Value: IntValue(17)},
		Card{Keyword: "NAXIS", Value: IntValue(0)},
	)
	_, _, err := axesAndBitpix(cl)
	require.Error(t, err)
	var target *InvalidBitpixError
	require.ErrorAs(t, err, &target)
}

func TestDataUnitLengthScenarioA(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "BITPIX", Value: IntValue(16)},
		Card{Keyword: "NAXIS", Value: IntValue(2)},
		Card{Keyword: "NAXIS1", Value: IntValue(2)},
		Card{Keyword: "NAXIS2", Value: IntValue(2)},
	)
	n, err := dataUnitLength(cl, 16, []int{2, 2})
	require.NoError(t, err)
	require.EqualValues(t, 8, n)
}

func TestDataUnitLengthScenarioC(t *testing.T) {
	cl := buildCardList(
		Card{Keyword: "PCOUNT", Value: IntValue(0)},
		Card{Keyword: "GCOUNT", Value: IntValue(1)},
	)
	n, err := dataUnitLength(cl, 8, []int{4, 3})
	require.NoError(t, err)
	require.EqualValues(t, 12, n)
}
