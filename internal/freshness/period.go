package freshness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zancompute/zanconfig/internal/errors"
)

// Period is the year and zero-padded month of the flight history tables a
// report reads from.
type Period struct {
	Year  string
	Month string
}

func (p Period) String() string { return p.Year + "-" + p.Month }

// ParsePeriod validates a report period. ok is false when either part is
// missing, which callers answer with an empty report rather than an error.
func ParsePeriod(year, month string) (p Period, ok bool, err error) {
	year = strings.TrimSpace(year)
	month = strings.TrimSpace(month)
	if year == "" || month == "" {
		return Period{}, false, nil
	}

	if len(year) != 4 {
		return Period{}, false, errors.Validation(componentName, "year must have four digits, got %q", year)
	}
	if _, convErr := strconv.ParseUint(year, 10, 16); convErr != nil {
		return Period{}, false, errors.Validation(componentName, "year must be numeric, got %q", year)
	}

	m, convErr := strconv.Atoi(month)
	if convErr != nil || m < 1 || m > 12 || len(month) > 2 {
		return Period{}, false, errors.Validation(componentName, "month must be between 1 and 12, got %q", month)
	}

	return Period{Year: year, Month: fmt.Sprintf("%02d", m)}, true, nil
}
