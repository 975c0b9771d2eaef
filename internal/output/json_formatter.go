package output

import (
	"encoding/json"

	"github.com/rgehrsitz/firesim/internal/domain"
)

// JSONFormatter emits the full result, records and summary, as indented JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
