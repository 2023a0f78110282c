package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario describes one stress run: how many entities to spawn, how to
// split components across them, and how the Manager's worker pool should be
// sized. Loaded from a YAML file when --scenario is given, otherwise the
// defaults below apply.
type Scenario struct {
	DurationText string             `yaml:"duration"`
	Entities     int                `yaml:"entities"`
	WorkerCount  int                `yaml:"workerCount"`
	ShardFactor  int                `yaml:"shardFactor"`
	Parallel     bool               `yaml:"parallel"`
	Weights      map[string]float64 `yaml:"componentWeights"`
}

func defaultScenario() Scenario {
	return Scenario{
		DurationText: "10s",
		Entities:     10000,
		WorkerCount:  4,
		ShardFactor:  2,
		Parallel:     true,
		Weights: map[string]float64{
			"position": 1.0,
			"velocity": 0.8,
			"health":   0.5,
			"dead":     0.05,
		},
	}
}

// Duration parses DurationText, falling back to 10s if it is empty or
// malformed.
func (s Scenario) Duration() time.Duration {
	d, err := time.ParseDuration(s.DurationText)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// loadScenario reads a scenario from path, overlaying it onto the defaults.
// An empty path returns the defaults unchanged.
func loadScenario(path string) (Scenario, error) {
	s := defaultScenario()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, err
	}
	return s, nil
}
