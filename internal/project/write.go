package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrYAMLBroken indicates a rewrite turned a valid YAML file into an invalid one.
var ErrYAMLBroken = errors.New("rewrite produced invalid YAML")

// checkYAML fails when before parses as YAML and after does not. Files that
// were never valid YAML are left to the caller.
func checkYAML(before, after string) error {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(before), &node); err != nil {
		return nil
	}
	if err := yaml.Unmarshal([]byte(after), &node); err != nil {
		return fmt.Errorf("%w: %v", ErrYAMLBroken, err)
	}
	return nil
}

// writeIfChanged writes data to path unless the file already holds it. The
// existing file mode is kept.
func writeIfChanged(path string, data []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return false, err
	}
	return true, nil
}
