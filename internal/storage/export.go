package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/iontrim/internal/trim"
)

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Depths []float64   `json:"depths"`
}

// create opens path for writing; an empty path or "-" means stdout.
func create(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// ExportJSON writes the run metadata and the final depth of every ion that
// stopped inside the target.
func ExportJSON(path string, meta *RunMetadata, ions []trim.Ion) error {
	data := ExportData{Run: *meta, Depths: trim.Depths(&trim.Batch{Ions: ions})}

	w, err := create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV re-emits stored ions.
func ExportCSV(path string, ions []trim.Ion) error {
	w, err := create(path)
	if err != nil {
		return err
	}
	defer w.Close()

	return encodeIons(csv.NewWriter(w), ions)
}
