package output

import (
	"encoding/json"

	"github.com/glovebenefits/ichracalc/internal/engine"
)

// JSONFormatter serializes the full batch result.
type JSONFormatter struct {
	Pretty bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(batch *engine.BatchResult) ([]byte, error) {
	if j.Pretty {
		return json.MarshalIndent(batch, "", "  ")
	}
	return json.Marshal(batch)
}
