// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. TASKBOARD_TOKEN_KEY.
	EnvPrefix = "TASKBOARD"

	// EnvConfigJSON holds a JSON document merged over the TOML config.
	EnvConfigJSON = "TASKBOARD_CONFIG_JSON"

	// MinTokenKeyLen is the minimum HMAC key size accepted for token signing.
	MinTokenKeyLen = 32

	// DefaultTokenExpiry is the absolute lifetime of an issued token.
	DefaultTokenExpiry = 24 * time.Hour

	defaultShutDownTime = 5
	defaultLimiterMax   = 10
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")

	// TASKBOARD_TOKEN_KEY overrides token.key and so on
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"token.key", "db.password", "seed.adminpassword"} {
		if err = v.BindEnv(key); err != nil {
			return Config{}, errors.Wrap(err, "failed to bind env")
		}
	}

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfigJSON config as JSON String. Secrets are masked.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	masked := *c
	masked.DB.Password = mask(masked.DB.Password)
	masked.Token.Key = mask(masked.Token.Key)
	masked.Seed.AdminPassword = mask(masked.Seed.AdminPassword)

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(masked); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}

	return "***"
}

// validate minimal config settings and fill defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if len(c.Token.Key) < MinTokenKeyLen {
		return errors.Wrap(ErrTokenKeyTooShort, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineMySQL
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrapf(ErrUnknownGormEngine, "%s: %q", invalidErrMessage, c.DB.GormEngine)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Token.Expiry == 0 {
		c.Token.Expiry = DefaultTokenExpiry
	}

	if c.LoginLimiter.Enabled {
		if c.LoginLimiter.Max == 0 {
			c.LoginLimiter.Max = defaultLimiterMax
		}

		if c.LoginLimiter.Expiration == 0 {
			c.LoginLimiter.Expiration = time.Minute
		}
	}

	return nil
}
