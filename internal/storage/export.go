package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/gaslab/internal/gas"
)

// ExportData is the machine-readable dump of one finished run.
type ExportData struct {
	Params  gas.Params         `json:"params"`
	Final   gas.Stats          `json:"final"`
	Chart   gas.ChartData      `json:"chart"`
	Metrics map[string]float64 `json:"metrics"`
	Steps   int                `json:"steps"`
}

// ExportJSON writes an indented JSON dump of a run, typically to stdout
// or a file the caller opened.
func ExportJSON(w io.Writer, p gas.Params, result *gas.Result) error {
	data := ExportData{
		Params:  p,
		Final:   result.Final,
		Chart:   result.Chart,
		Metrics: result.Metrics,
		Steps:   result.Steps,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
