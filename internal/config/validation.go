package config

import (
	"errors"
	"fmt"

	"github.com/haskel/bigo/internal/growth"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Budget.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("budget: %w", err))
	}

	if err := c.Sampler.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sampler: %w", err))
	}

	if err := c.Classifier.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("classifier: %w", err))
	}

	if err := c.Export.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("export: %w", err))
	}

	if err := c.Host.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("host: %w", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (b *BudgetConfig) Validate() error {
	var errs []error

	if b.TotalMS < 1 {
		errs = append(errs, fmt.Errorf("total_ms must be at least 1, got %d", b.TotalMS))
	}
	if b.CallMS < 1 {
		errs = append(errs, fmt.Errorf("call_ms must be at least 1, got %d", b.CallMS))
	}
	if b.CallMS > b.TotalMS {
		errs = append(errs, fmt.Errorf("call_ms (%d) cannot exceed total_ms (%d)", b.CallMS, b.TotalMS))
	}

	return errors.Join(errs...)
}

func (s *SamplerConfig) Validate() error {
	var errs []error

	if s.ResolutionUS < 1 {
		errs = append(errs, fmt.Errorf("resolution_us must be at least 1"))
	}
	if s.PollIntervalUS < 1 {
		errs = append(errs, fmt.Errorf("poll_interval_us must be at least 1"))
	}
	if s.MinSamples < 2 {
		errs = append(errs, fmt.Errorf("min_samples must be at least 2"))
	}
	if s.RateStepEvery < 1 {
		errs = append(errs, fmt.Errorf("rate_step_every must be at least 1"))
	}
	if s.MaxSamples < s.MinSamples {
		errs = append(errs, fmt.Errorf("max_samples must be at least min_samples"))
	}
	if s.MaxProbe < 2 {
		errs = append(errs, fmt.Errorf("max_probe must be at least 2"))
	}
	if iv := s.Interval; iv.Start < 1 || iv.Step < 1 || iv.End <= iv.Start {
		errs = append(errs, fmt.Errorf("interval must satisfy 1 <= start < end and step >= 1"))
	}

	return errors.Join(errs...)
}

func (c *ClassifierConfig) Validate() error {
	var errs []error

	if c.ConvergenceError <= 0 {
		errs = append(errs, fmt.Errorf("convergence_error must be positive"))
	}
	if c.NearZero < 0 {
		errs = append(errs, fmt.Errorf("near_zero must be non-negative"))
	}
	if c.Iterations < 1 {
		errs = append(errs, fmt.Errorf("iterations must be at least 1"))
	}
	if c.BandLow >= c.BandHigh {
		errs = append(errs, fmt.Errorf("band_low must be below band_high"))
	}
	if c.MaxShape <= -10 {
		errs = append(errs, fmt.Errorf("max_shape must exceed -10"))
	}
	if _, err := growth.Select(c.Functions); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (e *ExportConfig) Validate() error {
	if e.Enabled && e.Dir == "" {
		return fmt.Errorf("dir cannot be empty when export is enabled")
	}
	return nil
}

func (h *HostConfig) Validate() error {
	var errs []error

	if h.CPUBusyPercent < 0 || h.CPUBusyPercent > 100 {
		errs = append(errs, fmt.Errorf("cpu_busy_percent must be between 0 and 100"))
	}
	if h.MemoryBusyPercent < 0 || h.MemoryBusyPercent > 100 {
		errs = append(errs, fmt.Errorf("memory_busy_percent must be between 0 and 100"))
	}
	if h.Check && h.SampleMS < 1 {
		errs = append(errs, fmt.Errorf("sample_ms must be at least 1"))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}
	if s.MaxBodyBytes < 1 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive"))
	}
	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive"))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1"))
		}
	}

	return errors.Join(errs...)
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json":   true,
		"text":   true,
		"pretty": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text, pretty)", l.Format)
	}

	return nil
}
