package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Field [][]float64 `json:"field"`
}

// ExportJSON writes the metadata and field of a run as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	field, err := s.LoadField(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Field: field.Values()})
}
