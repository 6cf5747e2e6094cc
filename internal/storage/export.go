package storage

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

type ExportData struct {
	Metadata *RunMetadata `json:"metadata"`
	Times    []float64    `json:"times"`
	Mean     []float64    `json:"mean,omitempty"`
	Std      []float64    `json:"std,omitempty"`
	States   [][]float64  `json:"states"`
}

// ExportJSON writes a run with its mean curve and sample trajectory as one
// indented JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	tr, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Metadata: meta,
		Times:    tr.X,
		States:   make([][]float64, len(tr.Y)),
	}
	for i, y := range tr.Y {
		data.States[i] = y
	}

	if meta.Summary != nil {
		sum, err := s.LoadMean(runID)
		if err != nil {
			return err
		}
		data.Mean = sum.Mean
		data.Std = sum.Std
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(data), "encode export")
}
