package config

import "math"

func Default() *Config {
	return &Config{
		Budget: BudgetConfig{
			TotalMS: 5000,
			CallMS:  100,
		},
		Sampler: SamplerConfig{
			ResolutionUS:   1,
			PollIntervalUS: 100,
			MinSamples:     3,
			RateStepEvery:  500,
			MaxSamples:     5000,
			MaxProbe:       10_000_000,
			AutoInterval:   true,
			Interval: IntervalConfig{
				Start: 1,
				End:   math.MaxInt32,
				Step:  1,
			},
		},
		Classifier: ClassifierConfig{
			ConvergenceError: 0.01,
			NearZero:         0.3,
			Iterations:       100,
			BandLow:          0.9,
			BandHigh:         1.1,
			MaxShape:         1.0,
		},
		Export: ExportConfig{
			Enabled: false,
			Dir:     "data",
		},
		Host: HostConfig{
			Check:             true,
			CPUBusyPercent:    80.0,
			MemoryBusyPercent: 90.0,
			SampleMS:          200,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			MaxBodyBytes: 1 << 20,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 1,
				Burst:             5,
			},
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
