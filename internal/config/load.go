package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// NewViper returns a viper instance with whence's defaults and env
// binding applied. Flag bindings are layered on by the command that owns
// the flags; precedence is flags > WHENCE_* env vars > config file >
// defaults.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("output", DefaultOutput)
	v.SetDefault("sensitivity", Default().Sensitivity)
	v.SetDefault("exclude", DefaultExclude)
	v.SetDefault("detect_binary", true)

	v.SetEnvPrefix("WHENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file and unmarshals the merged settings.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)

		err := v.ReadInConfig()
		if err != nil {
			return Config{}, fmt.Errorf("could not read config file: %w", err)
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("could not unmarshal config: %w", err)
	}

	return cfg, nil
}
