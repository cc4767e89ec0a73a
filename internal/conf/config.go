// Package conf loads and validates the service settings.
package conf

import (
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Profile names.
const (
	ProfileProduction = "production"
	ProfileStaging    = "staging"
)

// Database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// environmentAliases maps the values the legacy deployment used for APP_ENV.
var environmentAliases = map[string]string{
	"prod":  ProfileProduction,
	"test":  ProfileStaging,
	"stage": ProfileStaging,
}

// Settings is the complete service configuration. A single profile is
// selected by Environment at startup and handed to the components that need
// database access.
type Settings struct {
	Environment string             `mapstructure:"environment" yaml:"environment"`
	Profiles    map[string]Profile `mapstructure:"profiles" yaml:"profiles"`
	Server      ServerSettings     `mapstructure:"server" yaml:"server"`
	Log         LogSettings        `mapstructure:"log" yaml:"log"`
	Freshness   FreshnessSettings  `mapstructure:"freshness" yaml:"freshness"`
	MQTT        MQTTSettings       `mapstructure:"mqtt" yaml:"mqtt"`
	Sentry      SentrySettings     `mapstructure:"sentry" yaml:"sentry"`
}

// SentrySettings configures error reporting. An empty DSN disables it.
type SentrySettings struct {
	DSN          string   `mapstructure:"dsn" yaml:"dsn"`
	SampleRate   float64  `mapstructure:"samplerate" yaml:"sampleRate"`
	Debug        bool     `mapstructure:"debug" yaml:"debug"`
	FlushTimeout Duration `mapstructure:"flushtimeout" yaml:"flushTimeout"`
}

// Profile holds the two databases of one deployment: the configuration store
// and the dashboard server the freshness report reads from.
type Profile struct {
	Config    DatabaseSettings `mapstructure:"config" yaml:"config"`
	Dashboard DatabaseSettings `mapstructure:"dashboard" yaml:"dashboard"`
}

// DatabaseSettings describes one database connection.
type DatabaseSettings struct {
	Driver          string            `mapstructure:"driver" yaml:"driver"`
	Host            string            `mapstructure:"host" yaml:"host"`
	Port            int               `mapstructure:"port" yaml:"port"`
	User            string            `mapstructure:"user" yaml:"user"`
	Password        string            `mapstructure:"password" yaml:"password"`
	Name            string            `mapstructure:"name" yaml:"name"`
	Path            string            `mapstructure:"path" yaml:"path"` // sqlite only
	Params          map[string]string `mapstructure:"params" yaml:"params,omitempty"`
	ConnectTimeout  Duration          `mapstructure:"connecttimeout" yaml:"connectTimeout"`
	MaxOpenConns    int               `mapstructure:"maxopenconns" yaml:"maxOpenConns"`
	MaxIdleConns    int               `mapstructure:"maxidleconns" yaml:"maxIdleConns"`
	ConnMaxLifetime Duration          `mapstructure:"connmaxlifetime" yaml:"connMaxLifetime"`
}

// DSN returns the driver-specific data source name. MySQL DSNs are built with
// the driver's own formatter so credentials are escaped correctly.
func (d DatabaseSettings) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.Timeout = d.ConnectTimeout.Std()
	if len(d.Params) > 0 {
		cfg.Params = d.Params
	}
	return cfg.FormatDSN()
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Host            string   `mapstructure:"host" yaml:"host"`
	Port            int      `mapstructure:"port" yaml:"port"`
	CORSOrigins     []string `mapstructure:"corsorigins" yaml:"corsOrigins"`
	ReadTimeout     Duration `mapstructure:"readtimeout" yaml:"readTimeout"`
	WriteTimeout    Duration `mapstructure:"writetimeout" yaml:"writeTimeout"`
	ShutdownTimeout Duration `mapstructure:"shutdowntimeout" yaml:"shutdownTimeout"`
	// LoginRate is the sustained number of login attempts per second allowed
	// from one client address; LoginBurst is the bucket size.
	LoginRate  float64 `mapstructure:"loginrate" yaml:"loginRate"`
	LoginBurst int     `mapstructure:"loginburst" yaml:"loginBurst"`
}

// Address returns host:port for the listener.
func (s ServerSettings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LogSettings configures the structured logger.
type LogSettings struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// FreshnessSettings configures the cross-schema freshness report.
type FreshnessSettings struct {
	// FlightSchema holds the per-month departure history tables.
	FlightSchema string            `mapstructure:"flightschema" yaml:"flightSchema"`
	CacheTTL     Duration          `mapstructure:"cachettl" yaml:"cacheTTL"`
	QueryTimeout Duration          `mapstructure:"querytimeout" yaml:"queryTimeout"`
	Clients      []FreshnessClient `mapstructure:"clients" yaml:"clients"`
}

// FreshnessClient declares which data feeds a reported client has. Schema is
// the client's database on the dashboard server.
type FreshnessClient struct {
	ID           string `mapstructure:"id" yaml:"id"`
	Schema       string `mapstructure:"schema" yaml:"schema"`
	DeviceStatus bool   `mapstructure:"devicestatus" yaml:"deviceStatus"`
	People       bool   `mapstructure:"people" yaml:"people"`
	Analytics    bool   `mapstructure:"analytics" yaml:"analytics"`
	Traffic      bool   `mapstructure:"traffic" yaml:"traffic"`
	// FlightPrefix names the client's monthly flight tables,
	// <prefix>_depHistory_<yyyy>_<mm>. Empty means no flight feed.
	FlightPrefix string `mapstructure:"flightprefix" yaml:"flightPrefix,omitempty"`
}

// MQTTSettings configures change event publishing.
type MQTTSettings struct {
	Enabled        bool     `mapstructure:"enabled" yaml:"enabled"`
	Broker         string   `mapstructure:"broker" yaml:"broker"`
	ClientID       string   `mapstructure:"clientid" yaml:"clientId"`
	Username       string   `mapstructure:"username" yaml:"username"`
	Password       string   `mapstructure:"password" yaml:"password"`
	TopicPrefix    string   `mapstructure:"topicprefix" yaml:"topicPrefix"`
	QoS            int      `mapstructure:"qos" yaml:"qos"`
	ConnectTimeout Duration `mapstructure:"connecttimeout" yaml:"connectTimeout"`
	PublishTimeout Duration `mapstructure:"publishtimeout" yaml:"publishTimeout"`
}

// ProfileName returns the canonical name of the selected profile.
func (s *Settings) ProfileName() string {
	env := strings.ToLower(strings.TrimSpace(s.Environment))
	if alias, ok := environmentAliases[env]; ok {
		return alias
	}
	return env
}

// ActiveProfile returns the profile selected by Environment.
func (s *Settings) ActiveProfile() (Profile, bool) {
	p, ok := s.Profiles[s.ProfileName()]
	return p, ok
}

// Redacted returns a copy safe to print, with every password masked.
func (s Settings) Redacted() Settings {
	const mask = "********"
	out := s
	out.Profiles = make(map[string]Profile, len(s.Profiles))
	for name, p := range s.Profiles {
		if p.Config.Password != "" {
			p.Config.Password = mask
		}
		if p.Dashboard.Password != "" {
			p.Dashboard.Password = mask
		}
		out.Profiles[name] = p
	}
	if out.MQTT.Password != "" {
		out.MQTT.Password = mask
	}
	if out.Sentry.DSN != "" {
		out.Sentry.DSN = mask
	}
	return out
}

// identifierRe matches unquoted MySQL identifiers.
var identifierRe = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$]*$`)

// IsIdentifier reports whether s is safe to splice into SQL as a schema or
// table name.
func IsIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// DefaultFreshnessClients returns the clients the dashboard has always
// reported on.
func DefaultFreshnessClients() []FreshnessClient {
	feeds := func(id, schema, flight string) FreshnessClient {
		return FreshnessClient{
			ID: id, Schema: schema,
			DeviceStatus: true, People: true, Analytics: true,
			FlightPrefix: flight,
		}
	}
	return []FreshnessClient{
		feeds("PHL", "phl", "phl"),
		feeds("PIT", "pit", "pit"),
		feeds("APPLE", "apple", ""),
		feeds("DIAL", "dial", ""),
		feeds("TRAXMIA", "traxmia", ""),
		feeds("TAKEDA", "takeda", ""),
		{ID: "ABMMIA", Schema: "abmmia", Traffic: true},
	}
}

const (
	defaultCacheTTL     = Duration(5 * time.Minute)
	defaultQueryTimeout = Duration(30 * time.Second)
)
