package report

import (
	"encoding/json"

	"github.com/danisetya/transfer-service/internal/domain"
)

// OutputFormatter defines the interface for formatting batch outcomes
type OutputFormatter interface {
	Format(outcome domain.BatchOutcome) ([]byte, error)
	FileExtension() string
}

// JSONFormatter formats batch outcomes as JSON
type JSONFormatter struct {
	PrettyPrint bool
}

func NewJSONFormatter(prettyPrint bool) *JSONFormatter {
	return &JSONFormatter{
		PrettyPrint: prettyPrint,
	}
}

// Format implements the OutputFormatter interface for JSON
func (f *JSONFormatter) Format(outcome domain.BatchOutcome) ([]byte, error) {
	if f.PrettyPrint {
		return json.MarshalIndent(outcome, "", "  ")
	}
	return json.Marshal(outcome)
}

func (f *JSONFormatter) FileExtension() string {
	return "json"
}
