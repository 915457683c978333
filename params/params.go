// Package params holds the simulator's configuration: group size, age
// thresholds, safety limits, and the PRNG seed. This package owns the shape
// of the configuration, its validation, and Load for reading it from a YAML
// file; cmd/agesim reads its own driver config, which embeds Params.
package params

import "fmt"

// RelocationStrategy selects which extreme-age candidate is preferred when a
// section looks for a node to relocate.
type RelocationStrategy string

const (
	// OldestFirst prefers the oldest eligible candidate.
	OldestFirst RelocationStrategy = "oldest-first"
	// YoungestFirst prefers the youngest eligible candidate.
	YoungestFirst RelocationStrategy = "youngest-first"
)

// UnmarshalYAML validates that the decoded string is one of the recognized
// strategies, rather than silently accepting an unknown value.
func (s *RelocationStrategy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch RelocationStrategy(raw) {
	case OldestFirst, YoungestFirst:
		*s = RelocationStrategy(raw)
		return nil
	default:
		return fmt.Errorf("params: unrecognized relocation strategy %q", raw)
	}
}

// Seed is the four 32-bit integers that deterministically seed the
// simulation's PRNG.
type Seed [4]uint32

// Params is the full set of recognized simulation options.
type Params struct {
	Seed           Seed `yaml:"seed"`
	NumIterations  int  `yaml:"num_iterations"`
	GroupSize      uint64 `yaml:"group_size"`
	InitAge        uint64 `yaml:"init_age"`
	AdultAge       uint64 `yaml:"adult_age"`
	MaxSectionSize uint64 `yaml:"max_section_size"`

	MaxRelocationAttempts int    `yaml:"max_relocation_attempts"`
	MaxInfantsPerSection   int    `yaml:"max_infants_per_section"`
	RelocationStrategy     RelocationStrategy `yaml:"relocation_strategy"`
}

// Quorum returns group_size/2 + 1, the number of adults required for a
// section to be considered to have reached consensus.
func (p Params) Quorum() uint64 {
	return p.GroupSize/2 + 1
}

// SplitLimit returns 2*group_size - quorum, the number of adults each child
// sub-prefix must have for a split to be triggered.
func (p Params) SplitLimit() uint64 {
	return 2*p.GroupSize - p.Quorum()
}

// Defaults returns a typical parameter set (group_size=8, init_age=4,
// adult_age=5), useful for tests and as a starting point for a config file.
func Defaults() Params {
	return Params{
		Seed:                   Seed{1, 2, 3, 4},
		NumIterations:          1000,
		GroupSize:              8,
		InitAge:                4,
		AdultAge:               5,
		MaxSectionSize:         60,
		MaxRelocationAttempts:  10,
		MaxInfantsPerSection:   2,
		RelocationStrategy:     OldestFirst,
	}
}

// Validate checks that p's fields form an internally-consistent
// configuration, returning a descriptive error otherwise.
func (p Params) Validate() error {
	if p.NumIterations <= 0 {
		return fmt.Errorf("params: num_iterations must be positive, got %d", p.NumIterations)
	}
	if p.GroupSize == 0 {
		return fmt.Errorf("params: group_size must be positive")
	}
	if p.AdultAge == 0 {
		return fmt.Errorf("params: adult_age must be positive")
	}
	if p.InitAge == 0 {
		return fmt.Errorf("params: init_age must be positive")
	}
	if p.MaxSectionSize == 0 {
		return fmt.Errorf("params: max_section_size must be positive")
	}
	if p.MaxRelocationAttempts <= 0 {
		return fmt.Errorf("params: max_relocation_attempts must be positive")
	}
	switch p.RelocationStrategy {
	case OldestFirst, YoungestFirst:
	default:
		return fmt.Errorf("params: unrecognized relocation strategy %q", p.RelocationStrategy)
	}
	return nil
}
