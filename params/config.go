package params

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Load reads and validates a Params configuration from a YAML file. Parse
// errors and missing/invalid fields are the driver's concern, surfaced here
// as a returned error rather than a panic.
func Load(filename string) (Params, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return Params{}, fmt.Errorf("params: failed to read config file: %w", err)
	}

	parsed := Defaults()
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return Params{}, fmt.Errorf("params: failed to parse config file: %w", err)
	}
	if err := parsed.Validate(); err != nil {
		return Params{}, err
	}
	return parsed, nil
}
