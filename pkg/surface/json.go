package surface

import (
	"encoding/json"
	"io"

	"github.com/lucasprac/dea-choquet/pkg/engine"
)

// JSONRenderer marshals CycleResults to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, result *engine.CycleResults) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
