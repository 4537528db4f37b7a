package profiling

import (
	"testing"

	"abtest/domain/dataset"
	"abtest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func campaignTable() *dataset.Table {
	headers := []string{"Impression", "Click", "Purchase", "Earning", "Note"}
	rows := []dataset.Row{
		{"Impression": "82529", "Click": "6090.08", "Purchase": "665.21", "Earning": "2311.28", "Note": "a"},
		{"Impression": "98050", "Click": "3382.86", "Purchase": "315.08", "Earning": "1742.81", "Note": "b"},
		{"Impression": "82696", "Click": "4167.97", "Purchase": "458.08", "Earning": "1797.83", "Note": ""},
		{"Impression": "109914", "Click": "4910.88", "Purchase": "", "Earning": "2056.26", "Note": "d"},
		{"Impression": "108458", "Click": "5987.66", "Purchase": "702.16", "Earning": "2463.14", "Note": "e"},
		{"Impression": "77773", "Click": "4462.21", "Purchase": "385.89", "Earning": "2045.59", "Note": "f"},
	}
	return &dataset.Table{Name: "Control Group", Headers: headers, Rows: rows}
}

func TestDescribe_ShapeAndExcerpts(t *testing.T) {
	summary, err := Describe(campaignTable(), 5)
	require.NoError(t, err)

	assert.Equal(t, "Control Group", summary.Name)
	assert.Equal(t, 6, summary.Rows)
	assert.Equal(t, 5, summary.Cols)
	require.Len(t, summary.Head, 5)
	require.Len(t, summary.Tail, 5)
	assert.Equal(t, "82529", summary.Head[0]["Impression"])
	assert.Equal(t, "77773", summary.Tail[4]["Impression"])
	assert.Equal(t, "98050", summary.Tail[0]["Impression"])
}

func TestDescribe_ExcerptLongerThanTable(t *testing.T) {
	summary, err := Describe(campaignTable(), 50)
	require.NoError(t, err)
	assert.Len(t, summary.Head, 6)
	assert.Len(t, summary.Tail, 6)

	summary, err = Describe(campaignTable(), 0)
	require.NoError(t, err)
	assert.Empty(t, summary.Head)
	assert.Empty(t, summary.Tail)
}

func TestDescribe_ColumnTypesAndMissing(t *testing.T) {
	summary, err := Describe(campaignTable(), 5)
	require.NoError(t, err)

	want := []ColumnInfo{
		{Name: "Impression", Type: TypeInt64, NonNull: 6, Missing: 0},
		{Name: "Click", Type: TypeFloat64, NonNull: 6, Missing: 0},
		{Name: "Purchase", Type: TypeFloat64, NonNull: 5, Missing: 1},
		{Name: "Earning", Type: TypeFloat64, NonNull: 6, Missing: 0},
		{Name: "Note", Type: TypeObject, NonNull: 5, Missing: 1},
	}
	assert.Equal(t, want, summary.Columns)

	// Text columns are left out of the describe table.
	require.Len(t, summary.Numeric, 4)
	for _, col := range summary.Numeric {
		assert.NotEqual(t, "Note", col.Name)
	}
}

func TestDescribe_NumericSummary(t *testing.T) {
	summary, err := Describe(campaignTable(), 5)
	require.NoError(t, err)

	var purchase ColumnSummary
	for _, col := range summary.Numeric {
		if col.Name == "Purchase" {
			purchase = col
		}
	}

	assert.Equal(t, 5, purchase.Count)
	assert.InDelta(t, 505.284, purchase.Mean, 1e-9)
	assert.Equal(t, 315.08, purchase.Min)
	assert.Equal(t, 702.16, purchase.Max)
	assert.Equal(t, 458.08, purchase.Median)
	assert.InDelta(t, 171.024, purchase.StdDev, 1e-3)
	assert.LessOrEqual(t, purchase.Min, purchase.Q25)
	assert.LessOrEqual(t, purchase.Q25, purchase.Median)
	assert.LessOrEqual(t, purchase.Median, purchase.Q75)
	assert.LessOrEqual(t, purchase.Q75, purchase.Max)
}

func TestDescribe_EmptyColumnIsObject(t *testing.T) {
	table := &dataset.Table{
		Name:    "Test Group",
		Headers: []string{"Purchase", "Blank"},
		Rows: []dataset.Row{
			{"Purchase": "1", "Blank": ""},
			{"Purchase": "2", "Blank": " "},
		},
	}

	summary, err := Describe(table, 5)
	require.NoError(t, err)
	assert.Equal(t, TypeObject, summary.Columns[1].Type)
	assert.Equal(t, 2, summary.Columns[1].Missing)
	require.Len(t, summary.Numeric, 1)
	assert.Equal(t, "Purchase", summary.Numeric[0].Name)
}

func TestSummarize(t *testing.T) {
	da := NewDistributionAnalyzer()

	single, err := da.Summarize("x", []float64{7})
	require.NoError(t, err)
	assert.Equal(t, ColumnSummary{Name: "x", Count: 1, Mean: 7, Min: 7, Q25: 7, Median: 7, Q75: 7, Max: 7}, single)

	pair, err := da.Summarize("y", []float64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, 2.0, pair.Mean)
	assert.InDelta(t, 1.4142135623730951, pair.StdDev, 1e-12)
	assert.Equal(t, 2.0, pair.Median)
	assert.Equal(t, 1.0, pair.Q25)
	assert.Equal(t, 3.0, pair.Q75)

	_, err = da.Summarize("z", nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientData, errors.GetCode(err))
}
