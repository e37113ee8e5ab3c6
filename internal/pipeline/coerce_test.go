package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/capital-cli/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"plain number", "1234.5", 1234.5},
		{"thousands separators", "1,234.50", 1234.50},
		{"millions", "12,345,678", 12345678},
		{"negative", "-42.25", -42.25},
		{"whitespace", "  99 ", 99},
		{"empty string", "", 0},
		{"garbage", "N/A", 0},
		{"trailing junk", "100 USD", 0},
		{"nil", nil, 0},
		{"already float", 7.5, 7.5},
		{"int", 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.in))
		})
	}
}

func TestIsFinancialColumn(t *testing.T) {
	assert.True(t, IsFinancialColumn(model.ColBusinessAllocation))
	assert.True(t, IsFinancialColumn(model.ColPriorYearsActuals))
	assert.True(t, IsFinancialColumn("2025_07_A"))
	assert.True(t, IsFinancialColumn("2019_12_CP"))

	assert.False(t, IsFinancialColumn(model.ColProjectName))
	assert.False(t, IsFinancialColumn("2025_07_X"))
	assert.False(t, IsFinancialColumn("25_07_A"))
	assert.False(t, IsFinancialColumn("2025_7_A"))
}

func TestCoerceFinancial(t *testing.T) {
	table := model.NewTable(
		[]string{model.ColProjectName, model.ColBusinessAllocation, "2025_01_A"},
		[][]string{
			{"Alpha", "1,000.00", "250"},
			{"Beta", "", "oops"},
		},
	)
	CoerceFinancial(table)

	assert.Equal(t, "Alpha", table.Rows[0][model.ColProjectName])
	assert.Equal(t, 1000.0, table.Rows[0][model.ColBusinessAllocation])
	assert.Equal(t, 250.0, table.Rows[0]["2025_01_A"])
	assert.Equal(t, 0.0, table.Rows[1][model.ColBusinessAllocation])
	assert.Equal(t, 0.0, table.Rows[1]["2025_01_A"])
}
