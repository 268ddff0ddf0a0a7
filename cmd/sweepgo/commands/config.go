package commands

import (
	"errors"

	"github.com/spf13/viper"

	"sweepgo/pkg/core"
)

type Config struct {
	Name      string                 `mapstructure:"name"`
	Space     []ParameterConfig      `mapstructure:"space"`
	Generator string                 `mapstructure:"generator"`
	Runner    string                 `mapstructure:"runner"`
	Benchmark string                 `mapstructure:"benchmark"`
	Trials    int                    `mapstructure:"trials"`
	Parallel  int                    `mapstructure:"parallel"`
	Objective string                 `mapstructure:"objective"`
	Minimize  bool                   `mapstructure:"minimize"`
	Output    string                 `mapstructure:"output"`
	Format    string                 `mapstructure:"format"`
	LogDir    string                 `mapstructure:"log_dir"`
	LogFormat string                 `mapstructure:"log_format"`
	Seed      int64                  `mapstructure:"seed"`
	Stopping  StoppingConfig         `mapstructure:"stopping"`
	Forest    ForestConfig           `mapstructure:"forest"`
	Surrogate SurrogateConfig        `mapstructure:"surrogate"`
	Exec      ExecConfig             `mapstructure:"exec"`
	Local     LocalConfig            `mapstructure:"local"`
	Cache     CacheConfig            `mapstructure:"cache"`
	Launch    LaunchConfig           `mapstructure:"launch"`
}

type ParameterConfig struct {
	Name     string    `mapstructure:"name"`
	Type     string    `mapstructure:"type"`
	Min      float64   `mapstructure:"min"`
	Max      float64   `mapstructure:"max"`
	LogScale bool      `mapstructure:"log_scale"`
	Values   []float64 `mapstructure:"values"`
}

type StoppingConfig struct {
	Percentile     float64 `mapstructure:"percentile"`
	MinProgression int     `mapstructure:"min_progression"`
	MinCurves      int     `mapstructure:"min_curves"`
}

type ForestConfig struct {
	Trees           int `mapstructure:"trees"`
	MaxDepth        int `mapstructure:"max_depth"`
	Candidates      int `mapstructure:"candidates"`
	MinObservations int `mapstructure:"min_observations"`
}

type SurrogateConfig struct {
	Acquisition     string  `mapstructure:"acquisition"`
	Beta            float64 `mapstructure:"beta"`
	Xi              float64 `mapstructure:"xi"`
	Candidates      int     `mapstructure:"candidates"`
	MinObservations int     `mapstructure:"min_observations"`
}

type ExecConfig struct {
	Command    string   `mapstructure:"command"`
	Args       []string `mapstructure:"args"`
	Dir        string   `mapstructure:"dir"`
	MetricsDir string   `mapstructure:"metrics_dir"`
}

type LocalConfig struct {
	Epochs        int `mapstructure:"epochs"`
	StepDelayMill int `mapstructure:"step_delay_millis"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
	TTLDays int    `mapstructure:"ttl_days"`
}

type LaunchConfig struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".sweepgo")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) searchSpace() core.SearchSpace {
	params := make([]core.Parameter, 0, len(c.Space))
	for _, p := range c.Space {
		params = append(params, core.Parameter{
			Name:     p.Name,
			Type:     core.ParameterType(p.Type),
			Min:      p.Min,
			Max:      p.Max,
			LogScale: p.LogScale,
			Values:   p.Values,
		})
	}
	return core.SearchSpace{NameHint: c.Name, Parameters: params}
}
