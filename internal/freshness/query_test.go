package freshness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zancompute/zanconfig/internal/conf"
)

func TestBuildQuery_DefaultClients(t *testing.T) {
	t.Parallel()

	clients := conf.DefaultFreshnessClients()
	query, args, err := buildQuery("flightDataHistory", clients, Period{Year: "2024", Month: "03"})
	require.NoError(t, err)

	selects := strings.Split(query, "\nUNION ALL\n")
	require.Len(t, selects, len(clients))
	assert.True(t, strings.HasSuffix(query, "\nORDER BY clientId"))
	assert.Equal(t, []any{"PHL", "PIT", "APPLE", "DIAL", "TRAXMIA", "TAKEDA", "ABMMIA"}, args)

	assert.Contains(t, selects[0], "FROM flightDataHistory.phl_depHistory_2024_03 ORDER BY updatedTime DESC LIMIT 1")
	assert.Contains(t, selects[1], "FROM flightDataHistory.pit_depHistory_2024_03")
	assert.Contains(t, selects[0], "FROM phl.deviceStatus ORDER BY deviceTimestamp DESC LIMIT 1")
	assert.Contains(t, selects[0], "FROM phl.peoplecountanalytics")
	assert.Contains(t, selects[0], "FROM phl.analytics")
	assert.Contains(t, selects[0], "NULL AS trafficLastUpdated")

	for _, sel := range selects[2:6] {
		assert.Contains(t, sel, "NULL AS flightLastUpdated")
		assert.NotContains(t, sel, "depHistory")
	}

	abm := selects[6]
	assert.Contains(t, abm, "FROM abmmia.intrafficDataAdvHistory ORDER BY updatedTime DESC LIMIT 1) AS trafficLastUpdated")
	for _, col := range []string{"deviceStatusLastUpdated", "peopleLastUpdated", "analyticsLastUpdated", "flightLastUpdated"} {
		assert.Contains(t, abm, "NULL AS "+col)
	}

	for _, sel := range selects {
		assert.True(t, strings.HasPrefix(sel, "SELECT ? AS clientId,"))
		assert.Contains(t, sel, "DATE_FORMAT(NOW(), '%Y-%m-%d %H:%i:%s') AS currentTime")
	}
}

func TestBuildQuery_Rejects(t *testing.T) {
	t.Parallel()

	period := Period{Year: "2024", Month: "01"}
	ok := conf.FreshnessClient{ID: "PHL", Schema: "phl", FlightPrefix: "phl"}

	tests := []struct {
		name    string
		schema  string
		clients []conf.FreshnessClient
		errMsg  string
	}{
		{"no clients", "flights", nil, "no clients"},
		{"bad flight schema", "flight data", []conf.FreshnessClient{ok}, "invalid flight schema"},
		{"bad client schema", "flights", []conf.FreshnessClient{{ID: "X", Schema: "x;drop"}}, "invalid schema"},
		{"bad flight prefix", "flights", []conf.FreshnessClient{{ID: "X", Schema: "x", FlightPrefix: "x-y"}}, "invalid flight table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := buildQuery(tt.schema, tt.clients, period)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestBuildQuery_ClientIDsAreBound(t *testing.T) {
	t.Parallel()

	clients := []conf.FreshnessClient{{ID: "O'HARE", Schema: "ohare", DeviceStatus: true}}
	query, args, err := buildQuery("flights", clients, Period{Year: "2024", Month: "01"})
	require.NoError(t, err)
	assert.NotContains(t, query, "O'HARE")
	assert.Equal(t, []any{"O'HARE"}, args)
}
