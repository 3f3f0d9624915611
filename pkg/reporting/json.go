package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// JSONFormatter writes results as indented JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format marshals any result value with indentation.
func (f *JSONFormatter) Format(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Print prints a result value as JSON to stdout.
func (f *JSONFormatter) Print(v interface{}) {
	data, _ := f.Format(v)
	fmt.Println(string(data))
}

// WriteJSON writes a result value to a JSON file, creating parent
// directories as needed.
func WriteJSON(v interface{}, path string) error {
	data, err := NewJSONFormatter().Format(v)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0o644)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
