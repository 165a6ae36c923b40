package container

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// composeFile is the subset of a compose descriptor the suite asserts on.
// Service and volume bodies are left opaque: the checks only need names and
// a successful parse.
type composeFile struct {
	Services map[string]yaml.Node `yaml:"services"`
	Volumes  map[string]yaml.Node `yaml:"volumes"`
}

// parseCompose decodes a compose descriptor.
func parseCompose(path string) (composeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return composeFile{}, err
	}

	var cf composeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return composeFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cf.Services) == 0 {
		return composeFile{}, fmt.Errorf("%s declares no services", path)
	}
	return cf, nil
}

// missingServices returns the expected services absent from the descriptor.
func (cf composeFile) missingServices(expected []string) []string {
	var missing []string
	for _, name := range expected {
		if _, ok := cf.Services[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// declaresVolume reports whether the descriptor declares a top-level volume.
func (cf composeFile) declaresVolume(name string) bool {
	_, ok := cf.Volumes[name]
	return ok
}
