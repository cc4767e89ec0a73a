package conf

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/zancompute/zanconfig/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. ZANCONFIG_SERVER_PORT.
const EnvPrefix = "ZANCONFIG"

// Load reads settings from path, or from zanconfig.yaml in the working
// directory or /etc/zanconfig when path is empty. A missing default file is
// not an error; defaults and environment overrides still apply. The result is
// validated before it is returned.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("zanconfig")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/zanconfig")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// APP_ENV is what the legacy deployment exported.
	if err := v.BindEnv("environment", EnvPrefix+"_ENVIRONMENT", "APP_ENV"); err != nil {
		return nil, configError(fmt.Errorf("failed to bind environment: %w", err))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, configError(fmt.Errorf("failed to read config: %w", err))
		}
	}

	var s Settings
	if err := v.Unmarshal(&s, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, configError(fmt.Errorf("failed to decode config: %w", err))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// setDefaults registers every key with viper so environment overrides apply
// even when the config file leaves the key out.
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", ProfileProduction)

	for _, profile := range []string{ProfileProduction, ProfileStaging} {
		for _, db := range []string{"config", "dashboard"} {
			key := "profiles." + profile + "." + db + "."
			v.SetDefault(key+"driver", DriverMySQL)
			v.SetDefault(key+"host", "127.0.0.1")
			v.SetDefault(key+"port", 3306)
			v.SetDefault(key+"user", "")
			v.SetDefault(key+"password", "")
			v.SetDefault(key+"name", "")
			v.SetDefault(key+"path", "")
			v.SetDefault(key+"connecttimeout", "10s")
			v.SetDefault(key+"maxopenconns", 10)
			v.SetDefault(key+"maxidleconns", 5)
			v.SetDefault(key+"connmaxlifetime", "5m")
		}
		v.SetDefault("profiles."+profile+".config.name", "configpage")
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.corsorigins", []string{"*"})
	v.SetDefault("server.readtimeout", "30s")
	v.SetDefault("server.writetimeout", "60s")
	v.SetDefault("server.shutdowntimeout", "10s")
	v.SetDefault("server.loginrate", 1.0)
	v.SetDefault("server.loginburst", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("freshness.flightschema", "flightDataHistory")
	v.SetDefault("freshness.cachettl", defaultCacheTTL.String())
	v.SetDefault("freshness.querytimeout", defaultQueryTimeout.String())
	v.SetDefault("freshness.clients", DefaultFreshnessClients())

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.clientid", "zanconfig")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topicprefix", "zanconfig")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.connecttimeout", "10s")
	v.SetDefault("mqtt.publishtimeout", "5s")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.samplerate", 1.0)
	v.SetDefault("sentry.debug", false)
	v.SetDefault("sentry.flushtimeout", "2s")
}

func configError(err error) error {
	return errors.New(err).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Build()
}
