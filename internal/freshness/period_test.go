package freshness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zancompute/zanconfig/internal/errors"
)

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		year   string
		month  string
		want   Period
		wantOK bool
		errMsg string
	}{
		{name: "padded month", year: "2024", month: "3", want: Period{"2024", "03"}, wantOK: true},
		{name: "already padded", year: "2024", month: "11", want: Period{"2024", "11"}, wantOK: true},
		{name: "surrounding space", year: " 2023 ", month: " 07", want: Period{"2023", "07"}, wantOK: true},
		{name: "missing year", month: "3"},
		{name: "missing month", year: "2024"},
		{name: "blank month", year: "2024", month: "  "},
		{name: "short year", year: "24", month: "3", errMsg: "four digits"},
		{name: "non numeric year", year: "20x4", month: "3", errMsg: "numeric"},
		{name: "month zero", year: "2024", month: "0", errMsg: "between 1 and 12"},
		{name: "month thirteen", year: "2024", month: "13", errMsg: "between 1 and 12"},
		{name: "month word", year: "2024", month: "march", errMsg: "between 1 and 12"},
		{name: "injection attempt", year: "2024", month: "1;DROP", errMsg: "between 1 and 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok, err := ParsePeriod(tt.year, tt.month)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "2024-03", Period{Year: "2024", Month: "03"}.String())
}
