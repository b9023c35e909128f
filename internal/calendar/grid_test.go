package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/condominio/internal/model"
)

func TestBuildGrid_DayCounts(t *testing.T) {
	tests := []struct {
		year, month int
		want        int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{2000, 2, 29},
		{1900, 2, 28},
		{2025, 1, 31},
		{2025, 4, 30},
		{2025, 12, 31},
	}
	for _, tt := range tests {
		g := BuildGrid(tt.year, tt.month)
		assert.Equal(t, tt.want, g.DaysInMonth, "%d-%02d", tt.year, tt.month)
	}
}

func TestBuildGrid_MatchesCalendarForEveryMonth(t *testing.T) {
	for year := 1990; year <= 2040; year++ {
		for month := 1; month <= 12; month++ {
			g := BuildGrid(year, month)

			first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			days := 0
			for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
				days++
			}

			blanks, nonBlank := 0, 0
			for i, c := range g.Cells {
				if c.Blank() {
					require.Equal(t, 0, nonBlank, "%d-%02d: blank after day cell at %d", year, month, i)
					blanks++
					continue
				}
				nonBlank++
				require.Equal(t, nonBlank, c.Day, "%d-%02d: days must be consecutive", year, month)
			}

			require.Equal(t, days, nonBlank, "%d-%02d", year, month)
			require.Equal(t, days, g.DaysInMonth)
			require.Equal(t, int(first.Weekday()), blanks, "%d-%02d", year, month)
			require.Equal(t, blanks, g.StartWeekday)
			require.Len(t, g.Cells, blanks+days, "no trailing padding")
		}
	}
}

func TestBuildGrid_Layout(t *testing.T) {
	// August 2025 starts on a Friday.
	g := BuildGrid(2025, 8)
	assert.Equal(t, 5, g.StartWeekday)
	assert.Equal(t, model.YearMonth{Year: 2025, Month: 8}, g.Month)

	weeks := g.Weeks()
	require.Len(t, weeks, 6)
	assert.Equal(t, []Cell{{}, {}, {}, {}, {}, {Day: 1}, {Day: 2}}, weeks[0])
	assert.Equal(t, []Cell{{Day: 31}}, weeks[5])

	// February 2026 starts on a Sunday and fills exactly four rows.
	g = BuildGrid(2026, 2)
	assert.Equal(t, 0, g.StartWeekday)
	assert.Len(t, g.Weeks(), 4)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		year, month int
		want        model.YearMonth
	}{
		{2025, 0, model.YearMonth{Year: 2024, Month: 12}},
		{2025, 13, model.YearMonth{Year: 2026, Month: 1}},
		{2025, 6, model.YearMonth{Year: 2025, Month: 6}},
		{2025, -12, model.YearMonth{Year: 2023, Month: 12}},
		{2025, 25, model.YearMonth{Year: 2027, Month: 1}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.year, tt.month), "Normalize(%d, %d)", tt.year, tt.month)
	}
}

func TestPrevNext(t *testing.T) {
	jan := model.YearMonth{Year: 2025, Month: 1}
	dec := model.YearMonth{Year: 2024, Month: 12}

	assert.Equal(t, dec, Prev(jan))
	assert.Equal(t, jan, Next(dec))
	assert.Equal(t, model.YearMonth{Year: 2025, Month: 2}, Next(jan))
}

func TestParseYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2025-08")
	require.NoError(t, err)
	assert.Equal(t, model.YearMonth{Year: 2025, Month: 8}, ym)
	assert.Equal(t, "2025-08", ym.String())

	for _, bad := range []string{"", "2025", "2025-13", "2025/08", "25-08"} {
		_, err := ParseYearMonth(bad)
		assert.Error(t, err, bad)
	}
}
