package openapi

import (
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// unmarshalStringOrSlice decodes data (JSON) as either a bare string or an
// array of strings into out.
func unmarshalStringOrSlice(data []byte, out *[]string) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*out = []string{single}
		return nil
	}

	var multi []string
	if err := json.Unmarshal(data, &multi); err != nil {
		return err
	}
	*out = multi
	return nil
}

func marshalStringOrSlice(values []string) ([]byte, error) {
	if len(values) == 1 {
		return json.Marshal(values[0])
	}
	return json.Marshal(values)
}

// unmarshalYAMLStringOrSlice mirrors unmarshalStringOrSlice for goccy/go-yaml's
// bytes-based custom unmarshaler interface.
func unmarshalYAMLStringOrSlice(data []byte, out *[]string) error {
	var single string
	if err := yaml.Unmarshal(data, &single); err == nil && single != "" {
		*out = []string{single}
		return nil
	}

	var multi []string
	if err := yaml.Unmarshal(data, &multi); err != nil {
		return err
	}
	*out = multi
	return nil
}
