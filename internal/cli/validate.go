package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadEventFile reads a saved Lambda event and checks it is a single JSON
// object, the only payload shape the pipeline Lambdas accept.
func ReadEventFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("event file %s is not a JSON object: %w", path, err)
	}
	return data, nil
}
