package dataset

import (
	"testing"

	"abtest/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func campaignTable() *Table {
	return &Table{
		Name:    "Control Group",
		Headers: []string{"Impression", "Click", "Purchase", "Earning"},
		Rows: []Row{
			{"Impression": "82529.46", "Click": "6090.08", "Purchase": "665.21", "Earning": "2311.28"},
			{"Impression": "98050.45", "Click": "3382.86", "Purchase": "315.08", "Earning": "1742.81"},
			{"Impression": "82696.02", "Click": "4167.97", "Purchase": "", "Earning": "1797.83"},
			{"Impression": "109914.40", "Click": "4910.88", "Purchase": " 458.08 ", "Earning": "2098.18"},
		},
	}
}

func TestTable_Column(t *testing.T) {
	values, skipped, err := campaignTable().Column("Purchase")
	require.NoError(t, err)

	assert.Equal(t, []float64{665.21, 315.08, 458.08}, values)
	assert.Equal(t, 1, skipped)
}

func TestTable_ColumnMissing(t *testing.T) {
	_, _, err := campaignTable().Column("Revenue")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Control Group")
}

func TestTable_ColumnNotNumeric(t *testing.T) {
	table := campaignTable()
	table.Rows[1]["Click"] = "n/a"

	_, _, err := table.Column("Click")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "row 3")
}

func TestTable_Shape(t *testing.T) {
	rows, cols := campaignTable().Shape()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 4, cols)
	assert.True(t, campaignTable().HasColumn("Earning"))
	assert.False(t, campaignTable().HasColumn("earning"))
}
