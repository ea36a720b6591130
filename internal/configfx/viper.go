package configfx

import (
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix              = "logrotd"
	DefaultConfigDirectory = "logrotd"
	DefaultConfigFile      = "logrotd"
)

const (
	DefaultMaxAgeDays = 7
	DefaultLogLevel   = "info"
)

var (
	defaultConfigPaths = []string{
		".",
		"./config",
		path.Join("/etc", DefaultConfigDirectory),
	}

	// Nested keys a command line flag overrides.
	flagKeys = map[string]string{
		"config":                 FlagConfig,
		"directory":              FlagDirectory,
		"retention.max_age_days": FlagMaxAgeDays,
		"log.level":              FlagLogLevel,
	}
)

func SetDefaults(v *viper.Viper) {
	v.SetDefault("streams", []map[string]interface{}{
		{"live_file": "out.log", "archive_prefix": "node-out-"},
		{"live_file": "err.log", "archive_prefix": "node-err-"},
	})

	v.SetDefault("schedule.times", []map[string]interface{}{
		{"hour": 0, "minute": 0},
	})
	v.SetDefault("schedule.cron", "")

	v.SetDefault("retention.max_age_days", DefaultMaxAgeDays)
	v.SetDefault("retention.count_gate", true)

	v.SetDefault("journal.dsn", "")
	v.SetDefault("journal.migrations", "file://migrations/")

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.address", "127.0.0.1:9180")
	v.SetDefault("server.timeout.read", 10*time.Second)
	v.SetDefault("server.timeout.write", 10*time.Second)
	v.SetDefault("server.log.requests", true)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", "text")
}

func ViperProvider(logger *logrus.Logger, flagSet *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	for key, name := range flagKeys {
		if err := v.BindPFlag(key, flagSet.Lookup(name)); err != nil {
			return nil, errors.Wrapf(err, "unable to bind flag %s", name)
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config from config file
	if configFile := v.GetString("config"); configFile != "" {
		// An explicitly given config file MUST exist and be valid

		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", configFile)
		}
	} else {
		// Otherwise look for one in the usual places, a missing file is not an error

		v.SetConfigName(DefaultConfigFile)

		for _, dir := range defaultConfigPaths {
			v.AddConfigPath(dir)
		}

		if err := v.ReadInConfig(); err != nil {
			logger.WithError(err).Warn("Couldn't read config file")
		}
	}

	return v, nil
}
