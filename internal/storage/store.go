package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/iontrim/internal/config"
	"github.com/san-kum/iontrim/internal/experiment"
	"github.com/san-kum/iontrim/internal/physics"
	"github.com/san-kum/iontrim/internal/stats"
	"github.com/san-kum/iontrim/internal/trim"
)

const (
	metadataFile = "metadata.json"
	ionsFile     = "ions.csv"
)

var ionsHeader = []string{"x", "y", "z", "e", "inside", "collisions"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Strategy      string           `json:"strategy"`
	Partitions    int              `json:"partitions"`
	Timestamp     time.Time        `json:"timestamp"`
	Seed          int64            `json:"seed"`
	Ions          int              `json:"ions"`
	Elapsed       float64          `json:"elapsed_seconds"`
	IonsPerSecond float64          `json:"ions_per_second"`
	Collisions    int              `json:"collisions"`
	Displacements int              `json:"displacements"`
	Clamped       int              `json:"clamped"`
	Summary       trim.Summary     `json:"summary"`
	Histogram     *stats.Histogram `json:"histogram,omitempty"`
	Config        *config.Config   `json:"config,omitempty"`
}

func newRunID(name string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s", name, now.Unix(), uuid.NewString()[:8])
}

// Save writes a run directory with the metadata and the final ion states.
func (s *Store) Save(rep *experiment.Report) (string, error) {
	now := time.Now()
	runID := newRunID(rep.Name, now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	res := rep.Result
	meta := RunMetadata{
		ID:            runID,
		Name:          rep.Name,
		Strategy:      rep.Strategy,
		Partitions:    rep.Partitions,
		Timestamp:     now,
		Ions:          res.Batch.Len(),
		Elapsed:       res.Elapsed.Seconds(),
		IonsPerSecond: res.IonsPerSecond(),
		Collisions:    res.Collisions,
		Displacements: res.Displacements,
		Clamped:       res.Clamped,
		Summary:       res.Summary,
		Histogram:     rep.Histogram,
		Config:        rep.Config,
	}
	if rep.Config != nil {
		meta.Seed = rep.Config.Simulation.Seed
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeIons(filepath.Join(runDir, ionsFile), res.Batch.Ions); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeIons(path string, ions []trim.Ion) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := encodeIons(csv.NewWriter(f), ions); err != nil {
		return err
	}
	return f.Close()
}

func encodeIons(w *csv.Writer, ions []trim.Ion) error {
	if err := w.Write(ionsHeader); err != nil {
		return err
	}
	for _, ion := range ions {
		row := []string{
			strconv.FormatFloat(ion.Pos[0], 'f', 6, 64),
			strconv.FormatFloat(ion.Pos[1], 'f', 6, 64),
			strconv.FormatFloat(ion.Pos[2], 'f', 6, 64),
			strconv.FormatFloat(ion.E, 'f', 6, 64),
			strconv.FormatBool(ion.Inside),
			strconv.Itoa(ion.Collisions),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all readable runs, newest first.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadIons reads the final ion states of a run. Direction is not stored.
func (s *Store) LoadIons(runID string) ([]trim.Ion, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ionsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(ionsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []trim.Ion{}, nil
	}

	ions := make([]trim.Ion, 0, len(records)-1)
	for i, record := range records[1:] {
		ion, err := parseIon(record)
		if err != nil {
			return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
		}
		ions = append(ions, ion)
	}
	return ions, nil
}

func parseIon(record []string) (trim.Ion, error) {
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return trim.Ion{}, err
		}
		vals[i] = v
	}
	inside, err := strconv.ParseBool(record[4])
	if err != nil {
		return trim.Ion{}, err
	}
	coll, err := strconv.Atoi(record[5])
	if err != nil {
		return trim.Ion{}, err
	}
	return trim.Ion{
		Pos:        physics.Vec3{vals[0], vals[1], vals[2]},
		E:          vals[3],
		Inside:     inside,
		Collisions: coll,
	}, nil
}
