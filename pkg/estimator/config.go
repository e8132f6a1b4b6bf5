package estimator

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages estimator configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Algorithm parameters
	v.SetDefault("algorithm.random_seed", time.Now().UnixNano())
	v.SetDefault("algorithm.samples", 0)

	// Moser-Tardos round cap: lll.max_rounds wins when positive
	v.SetDefault("lll.max_rounds", 0)
	v.SetDefault("lll.max_rounds_factor", 100)

	// Performance parameters
	v.SetDefault("performance.parallel", true)
	v.SetDefault("performance.num_workers", runtime.NumCPU())

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.enable_progress", true)
	v.SetDefault("logging.progress_interval", 10000)

	v.SetDefault("analysis.track_runs", false)
	v.SetDefault("analysis.output_file", "lll_runs.jsonl")

	v.SetEnvPrefix("MALLOWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for algorithm parameters
func (c *Config) RandomSeed() int64 { return c.v.GetInt64("algorithm.random_seed") }
func (c *Config) Samples() int { return c.v.GetInt("algorithm.samples") }

func (c *Config) MaxRounds() int { return c.v.GetInt("lll.max_rounds") }
func (c *Config) MaxRoundsFactor() int { return c.v.GetInt("lll.max_rounds_factor") }

// RoundCap is the number of rounds a single Moser-Tardos run may consume
// before it is reported as non-converged.
func (c *Config) RoundCap(voters int) int {
	if explicit := c.MaxRounds(); explicit > 0 {
		return explicit
	}
	factor := c.MaxRoundsFactor()
	if factor < 1 {
		factor = 1
	}
	if voters < 1 {
		voters = 1
	}
	return factor * voters
}

func (c *Config) Parallel() bool { return c.v.GetBool("performance.parallel") }
func (c *Config) NumWorkers() int { return c.v.GetInt("performance.num_workers") }

// Workers is the effective worker count; 1 means the single sequential stream
func (c *Config) Workers() int {
	if !c.Parallel() || c.NumWorkers() < 1 {
		return 1
	}
	return c.NumWorkers()
}

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }
func (c *Config) EnableProgress() bool { return c.v.GetBool("logging.enable_progress") }
func (c *Config) ProgressInterval() int { return c.v.GetInt("logging.progress_interval") }
func (c *Config) TrackRuns() bool { return c.v.GetBool("analysis.track_runs") }
func (c *Config) TrackingOutputFile() string { return c.v.GetString("analysis.output_file") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config. Logs go to stderr so
// stdout stays free for estimates.
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "mallows").Logger()
}
