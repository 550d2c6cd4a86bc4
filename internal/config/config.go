package config

import (
	"fmt"
	"time"

	"github.com/haskel/bigo/internal/complexity"
	"github.com/haskel/bigo/internal/growth"
)

type Config struct {
	Budget     BudgetConfig     `yaml:"budget" json:"budget"`
	Sampler    SamplerConfig    `yaml:"sampler" json:"sampler"`
	Classifier ClassifierConfig `yaml:"classifier" json:"classifier"`
	Export     ExportConfig     `yaml:"export" json:"export"`
	Host       HostConfig       `yaml:"host" json:"host"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Auth       AuthConfig       `yaml:"auth" json:"auth"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// BudgetConfig bounds how long a computation may measure.
type BudgetConfig struct {
	// TotalMS caps one sampling pass.
	TotalMS int `yaml:"total_ms" json:"total_ms"`
	// CallMS caps one probe while searching for the interval.
	CallMS int `yaml:"call_ms" json:"call_ms"`
}

type SamplerConfig struct {
	ResolutionUS   int            `yaml:"resolution_us" json:"resolution_us"`
	PollIntervalUS int            `yaml:"poll_interval_us" json:"poll_interval_us"`
	MinSamples     int            `yaml:"min_samples" json:"min_samples"`
	RateStepEvery  int            `yaml:"rate_step_every" json:"rate_step_every"`
	MaxSamples     int            `yaml:"max_samples" json:"max_samples"`
	MaxProbe       int            `yaml:"max_probe" json:"max_probe"`
	AutoInterval   bool           `yaml:"auto_interval" json:"auto_interval"`
	Interval       IntervalConfig `yaml:"interval" json:"interval"`
}

// IntervalConfig is used when auto_interval is off.
type IntervalConfig struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
	Step  int `yaml:"step" json:"step"`
}

type ClassifierConfig struct {
	ConvergenceError float64 `yaml:"convergence_error" json:"convergence_error"`
	NearZero         float64 `yaml:"near_zero" json:"near_zero"`
	Iterations       int     `yaml:"iterations" json:"iterations"`
	BandLow          float64 `yaml:"band_low" json:"band_low"`
	BandHigh         float64 `yaml:"band_high" json:"band_high"`
	MaxShape         float64 `yaml:"max_shape" json:"max_shape"`
	// Functions restricts the growth bank; empty means all classes.
	Functions []string `yaml:"functions" json:"functions"`
}

type ExportConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`
}

// HostConfig controls the host load check done before measuring.
type HostConfig struct {
	Check             bool    `yaml:"check" json:"check"`
	CPUBusyPercent    float64 `yaml:"cpu_busy_percent" json:"cpu_busy_percent"`
	MemoryBusyPercent float64 `yaml:"memory_busy_percent" json:"memory_busy_percent"`
	SampleMS          int     `yaml:"sample_ms" json:"sample_ms"`
}

type ServerConfig struct {
	Host         string          `yaml:"host" json:"host"`
	Port         int             `yaml:"port" json:"port"`
	MaxBodyBytes int64           `yaml:"max_body_bytes" json:"max_body_bytes"`
	RateLimit    RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" json:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
	// PerIP keeps one bucket per client address instead of a shared one.
	PerIP bool `yaml:"per_ip" json:"per_ip"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"-"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

func (c *Config) TotalBudget() time.Duration {
	return time.Duration(c.Budget.TotalMS) * time.Millisecond
}

func (c *Config) CallBudget() time.Duration {
	return time.Duration(c.Budget.CallMS) * time.Millisecond
}

func (c *Config) Resolution() time.Duration {
	return time.Duration(c.Sampler.ResolutionUS) * time.Microsecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Sampler.PollIntervalUS) * time.Microsecond
}

func (c *Config) HostSample() time.Duration {
	return time.Duration(c.Host.SampleMS) * time.Millisecond
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Engine converts the configuration into engine settings.
func (c *Config) Engine() (complexity.Config, error) {
	bank, err := growth.Select(c.Classifier.Functions)
	if err != nil {
		return complexity.Config{}, err
	}

	return complexity.Config{
		TotalBudget:      c.TotalBudget(),
		CallBudget:       c.CallBudget(),
		Bank:             bank,
		ConvergenceError: c.Classifier.ConvergenceError,
		NearZero:         c.Classifier.NearZero,
		AutoInterval:     c.Sampler.AutoInterval,
		Interval: complexity.Interval{
			Start: c.Sampler.Interval.Start,
			End:   c.Sampler.Interval.End,
			Step:  c.Sampler.Interval.Step,
		},
		Resolution:    c.Resolution(),
		MinSamples:    c.Sampler.MinSamples,
		RateStepEvery: c.Sampler.RateStepEvery,
		MaxSamples:    c.Sampler.MaxSamples,
		MaxProbe:      c.Sampler.MaxProbe,
		FitIterations: c.Classifier.Iterations,
		BandLow:       c.Classifier.BandLow,
		BandHigh:      c.Classifier.BandHigh,
		MaxShape:      c.Classifier.MaxShape,
	}, nil
}
