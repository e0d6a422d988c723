package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/gaslab/internal/gas"
	"github.com/san-kum/gaslab/internal/stats"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata is the durable summary of one finished run. Trajectories
// are never persisted; the histograms and bounded history carry the
// statistical content.
type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Params    gas.Params         `json:"params"`
	Final     gas.Stats          `json:"final"`
	Metrics   map[string]float64 `json:"metrics"`
	Steps     int                `json:"steps"`
}

// Save writes one run directory gas_<unix> holding metadata.json,
// histograms.csv and history.csv, and returns the run ID.
func (s *Store) Save(p gas.Params, result *gas.Result) (string, error) {
	runID := fmt.Sprintf("gas_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Params:    p,
		Final:     result.Final,
		Metrics:   result.Metrics,
		Steps:     result.Steps,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeHistograms(filepath.Join(runDir, "histograms.csv"), result.Chart); err != nil {
		return "", err
	}
	if err := writeHistory(filepath.Join(runDir, "history.csv"), result.Chart.History); err != nil {
		return "", err
	}

	return runID, nil
}

func writeHistograms(path string, chart gas.ChartData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"kind", "start", "end", "count", "probability", "theory"}); err != nil {
		return err
	}
	for _, row := range [...]struct {
		kind string
		bins []stats.Bin
	}{
		{"speed", chart.Speed},
		{"energy", chart.Energy},
	} {
		for _, b := range row.bins {
			record := []string{
				row.kind,
				formatFloat(b.Start),
				formatFloat(b.End),
				strconv.Itoa(b.Count),
				formatFloat(b.Probability),
				formatFloat(b.Theory),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

func writeHistory(path string, history []stats.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"time", "temp_error_pct", "total_energy"}); err != nil {
		return err
	}
	for _, rec := range history {
		record := []string{
			formatFloat(rec.Time),
			formatFloat(rec.TempErrorPct),
			formatFloat(rec.TotalEnergy),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadHistograms reads the saved speed and energy bins of a run.
func (s *Store) LoadHistograms(runID string) (speed, energy []stats.Bin, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "histograms.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != 6 {
			continue
		}
		count, err := strconv.Atoi(record[3])
		if err != nil {
			continue
		}
		bin := stats.Bin{
			Start:       parseFloat(record[1]),
			End:         parseFloat(record[2]),
			Count:       count,
			Probability: parseFloat(record[4]),
			Theory:      parseFloat(record[5]),
		}
		switch record[0] {
		case "speed":
			speed = append(speed, bin)
		case "energy":
			energy = append(energy, bin)
		}
	}

	return speed, energy, nil
}

// LoadHistory reads the saved temperature/energy time series of a run.
func (s *Store) LoadHistory(runID string) ([]stats.Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "history.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	history := make([]stats.Record, 0, len(records))
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != 3 {
			continue
		}
		history = append(history, stats.Record{
			Time:         parseFloat(record[0]),
			TempErrorPct: parseFloat(record[1]),
			TotalEnergy:  parseFloat(record[2]),
		})
	}

	return history, nil
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
