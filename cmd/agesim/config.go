package main

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"

	"github.com/dsprotocol/agesim/params"
)

// Config specifies the file format of a simulation run's config file: the
// protocol parameters plus the ambient, driver-level concerns (where to
// serve metrics, where to write the stats dump).
type Config struct {
	Params params.Params `yaml:"params"`

	MetricsAddr string `yaml:"metrics-addr"`
	StatsFile   string `yaml:"stats-file"`

	// ChainDBFile, if set, persists every section's chain blocks (Live,
	// Dead, and Gone alike) to a LevelDB database at this path for
	// after-the-fact replay. Omitting it runs the simulation with no
	// durable audit log, which is the common case for a quick local run.
	ChainDBFile string `yaml:"chain-db-file"`
}

// ReadConfig reads and validates a Config from a YAML file.
func ReadConfig(filename string) (*Config, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	parsed := Config{Params: params.Defaults()}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parsed.Params.Validate(); err != nil {
		return nil, err
	}
	if parsed.MetricsAddr == "" {
		return nil, fmt.Errorf("field not provided: metrics-addr")
	}
	if parsed.StatsFile == "" {
		return nil, fmt.Errorf("field not provided: stats-file")
	}
	return &parsed, nil
}
