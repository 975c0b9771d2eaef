package output

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/firesim/internal/domain"
	"gopkg.in/yaml.v3"
)

// SaveConfiguration writes params to filename as YAML.
func SaveConfiguration(params *domain.ParameterSet, filename string) error {
	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	return os.WriteFile(filename, data, 0644)
}
