package conf

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zancompute/zanconfig/internal/errors"
	"github.com/zancompute/zanconfig/internal/logger"
)

// Validate checks the selected profile and every setting the service would
// otherwise trip over at runtime. All problems are reported together.
func (s *Settings) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	p, ok := s.ActiveProfile()
	if !ok {
		names := make([]string, 0, len(s.Profiles))
		for name := range s.Profiles {
			names = append(names, name)
		}
		slices.Sort(names)
		add("environment %q does not name a profile (have %s)", s.Environment, strings.Join(names, ", "))
	} else {
		validateDatabase("config", p.Config, true, add)
		validateDatabase("dashboard", p.Dashboard, false, add)
		if p.Dashboard.Driver == DriverSQLite {
			add("dashboard database must use mysql: the freshness report relies on cross-schema queries")
		}
	}

	if s.Server.Port < 1 || s.Server.Port > 65535 {
		add("server.port %d is out of range", s.Server.Port)
	}
	if s.Server.LoginRate <= 0 || s.Server.LoginBurst < 1 {
		add("server.loginRate and server.loginBurst must be positive")
	}

	switch logger.LogLevel(strings.ToLower(s.Log.Level)) {
	case logger.LogLevelDebug, logger.LogLevelInfo, logger.LogLevelWarn, logger.LogLevelError:
	default:
		add("log.level %q is not one of debug, info, warn, error", s.Log.Level)
	}
	if s.Log.Format != logger.FormatJSON && s.Log.Format != logger.FormatConsole {
		add("log.format %q must be %s or %s", s.Log.Format, logger.FormatJSON, logger.FormatConsole)
	}

	validateFreshness(s.Freshness, add)

	if s.MQTT.Enabled {
		if s.MQTT.Broker == "" {
			add("mqtt.broker is required when mqtt is enabled")
		}
		if s.MQTT.QoS < 0 || s.MQTT.QoS > 2 {
			add("mqtt.qos %d must be 0, 1 or 2", s.MQTT.QoS)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return configError(errors.Join(errs...))
}

func validateDatabase(name string, db DatabaseSettings, needName bool, add func(string, ...any)) {
	switch db.Driver {
	case DriverMySQL:
		if db.Host == "" {
			add("%s database host is required", name)
		}
		if needName && db.Name == "" {
			add("%s database name is required", name)
		}
	case DriverSQLite:
		if db.Path == "" {
			add("%s database path is required for sqlite", name)
		}
	default:
		add("%s database driver %q must be %s or %s", name, db.Driver, DriverMySQL, DriverSQLite)
	}
}

func validateFreshness(f FreshnessSettings, add func(string, ...any)) {
	if !IsIdentifier(f.FlightSchema) {
		add("freshness.flightSchema %q is not a valid identifier", f.FlightSchema)
	}
	if f.CacheTTL < 0 {
		add("freshness.cacheTTL must not be negative")
	}
	if f.QueryTimeout <= 0 {
		add("freshness.queryTimeout must be positive")
	}
	seen := make(map[string]bool, len(f.Clients))
	for i, c := range f.Clients {
		if c.ID == "" || strings.ContainsAny(c.ID, "'\\") {
			add("freshness.clients[%d].id %q is invalid", i, c.ID)
		}
		if seen[c.ID] {
			add("freshness.clients[%d].id %q is duplicated", i, c.ID)
		}
		seen[c.ID] = true
		if !IsIdentifier(c.Schema) {
			add("freshness.clients[%d].schema %q is not a valid identifier", i, c.Schema)
		}
		if c.FlightPrefix != "" && !IsIdentifier(c.FlightPrefix) {
			add("freshness.clients[%d].flightPrefix %q is not a valid identifier", i, c.FlightPrefix)
		}
	}
}
