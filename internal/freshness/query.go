package freshness

import (
	"fmt"
	"strings"

	"github.com/zancompute/zanconfig/internal/conf"
	"github.com/zancompute/zanconfig/internal/errors"
)

const timestampFormat = "'%Y-%m-%d %H:%i:%s'"

// buildQuery composes one SELECT per client joined with UNION ALL. Client
// identifiers are bound as arguments; schema and table names are validated
// identifiers spliced into the text.
func buildQuery(flightSchema string, clients []conf.FreshnessClient, p Period) (string, []any, error) {
	if len(clients) == 0 {
		return "", nil, errors.Validation(componentName, "no clients configured")
	}
	if !conf.IsIdentifier(flightSchema) {
		return "", nil, errors.Validation(componentName, "invalid flight schema %q", flightSchema)
	}

	selects := make([]string, 0, len(clients))
	args := make([]any, 0, len(clients))
	for _, c := range clients {
		sel, err := clientSelect(flightSchema, c, p)
		if err != nil {
			return "", nil, err
		}
		selects = append(selects, sel)
		args = append(args, c.ID)
	}

	return strings.Join(selects, "\nUNION ALL\n") + "\nORDER BY clientId", args, nil
}

func clientSelect(flightSchema string, c conf.FreshnessClient, p Period) (string, error) {
	if !conf.IsIdentifier(c.Schema) {
		return "", errors.Validation(componentName, "invalid schema %q for client %s", c.Schema, c.ID)
	}

	flight := "NULL"
	if c.FlightPrefix != "" {
		table := fmt.Sprintf("%s_depHistory_%s_%s", c.FlightPrefix, p.Year, p.Month)
		if !conf.IsIdentifier(table) {
			return "", errors.Validation(componentName, "invalid flight table %q for client %s", table, c.ID)
		}
		flight = latest(flightSchema+"."+table, "updatedTime")
	}

	column := func(enabled bool, table, col string) string {
		if !enabled {
			return "NULL"
		}
		return latest(c.Schema+"."+table, col)
	}

	return fmt.Sprintf("SELECT ? AS clientId,\n"+
		"  DATE_FORMAT(NOW(), %s) AS currentTime,\n"+
		"  %s AS deviceStatusLastUpdated,\n"+
		"  %s AS peopleLastUpdated,\n"+
		"  %s AS analyticsLastUpdated,\n"+
		"  %s AS flightLastUpdated,\n"+
		"  %s AS trafficLastUpdated",
		timestampFormat,
		column(c.DeviceStatus, "deviceStatus", "deviceTimestamp"),
		column(c.People, "peoplecountanalytics", "updatedTime"),
		column(c.Analytics, "analytics", "updatedTime"),
		flight,
		column(c.Traffic, "intrafficDataAdvHistory", "updatedTime"),
	), nil
}

// latest selects the most recent value of col in table, formatted as text.
func latest(table, col string) string {
	return fmt.Sprintf("(SELECT DATE_FORMAT(%s, %s) FROM %s ORDER BY %s DESC LIMIT 1)",
		col, timestampFormat, table, col)
}
