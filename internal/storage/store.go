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

	"github.com/LAPKB/ode-solvers/internal/analysis"
	"github.com/LAPKB/ode-solvers/sde"
	"github.com/pkg/errors"
)

const (
	metadataFile = "metadata.json"
	meanFile     = "mean.csv"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return errors.Wrap(os.MkdirAll(s.baseDir, 0755), "create data directory")
}

type RunMetadata struct {
	ID         string               `json:"id"`
	Model      string               `json:"model"`
	Timestamp  time.Time            `json:"timestamp"`
	Seed       uint64               `json:"seed"`
	T0         float64              `json:"t0"`
	TEnd       float64              `json:"t_end"`
	Dt         float64              `json:"dt"`
	Runs       int                  `json:"runs"`
	Y0         []float64            `json:"y0"`
	Params     map[string]float64   `json:"params"`
	Stats      sde.Stats            `json:"stats"`
	Elapsed    time.Duration        `json:"elapsed_ns"`
	Summary    *analysis.Summary    `json:"summary,omitempty"`
	Comparison *analysis.Comparison `json:"comparison,omitempty"`
	Covariance [][]float64          `json:"covariance,omitempty"`
	Metrics    map[string]float64   `json:"metrics,omitempty"`
}

// Save writes a new run directory holding the metadata, the ensemble mean
// of meta.Summary and the states of one sample trajectory. meta.ID and
// meta.Timestamp are filled in and the new ID is returned.
func (s *Store) Save(meta RunMetadata, sample sde.Trajectory[float64]) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Model, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrap(err, "create run directory")
	}

	meta.ID = runID
	meta.Timestamp = now

	if err := writeRun(runDir, meta, sample); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			return "", errors.Wrapf(err, "remove incomplete run %s: %v", runID, rmErr)
		}
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, sample sde.Trajectory[float64]) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if meta.Summary != nil {
		if err := writeMean(filepath.Join(runDir, meanFile), meta.Summary); err != nil {
			return err
		}
	}
	return writeStates(filepath.Join(runDir, statesFile), sample)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create metadata")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encode metadata")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, header []string, rows int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", filepath.Base(path))
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, "write %s", filepath.Base(path))
	}
	for i := 0; i < rows; i++ {
		if err := w.Write(row(i)); err != nil {
			return errors.Wrapf(err, "write %s", filepath.Base(path))
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flush %s", filepath.Base(path))
}

func writeMean(path string, s *analysis.Summary) error {
	return writeCSV(path, []string{"time", "mean", "std", "count"}, len(s.Times), func(i int) []string {
		return []string{
			formatFloat(s.Times[i]),
			formatFloat(s.Mean[i]),
			formatFloat(s.Std[i]),
			strconv.Itoa(s.Count[i]),
		}
	})
}

func writeStates(path string, tr sde.Trajectory[float64]) error {
	header := []string{"time"}
	if len(tr.Y) > 0 {
		for i := range tr.Y[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	return writeCSV(path, header, len(tr.Y), func(i int) []string {
		row := []string{formatFloat(tr.X[i])}
		for _, v := range tr.Y[i] {
			row = append(row, formatFloat(v))
		}
		return row
	})
}

// List returns the metadata of every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, errors.Wrap(err, "read data directory")
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, errors.Wrapf(err, "load run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "decode run %s", runID)
	}

	return &meta, nil
}

func (s *Store) readCSV(runID, name string) ([][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, errors.Wrapf(err, "open %s of run %s", name, runID)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s of run %s", name, runID)
	}

	rows := make([][]float64, 0, len(records))
	for i := 1; i < len(records); i++ {
		row := make([]float64, len(records[i]))
		for j, field := range records[i] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s line %d", name, i+1)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadStates returns the sample trajectory of a run.
func (s *Store) LoadStates(runID string) (sde.Trajectory[float64], error) {
	rows, err := s.readCSV(runID, statesFile)
	if err != nil {
		return sde.Trajectory[float64]{}, err
	}

	tr := sde.Trajectory[float64]{
		X: make([]float64, 0, len(rows)),
		Y: make([]sde.Vector[float64], 0, len(rows)),
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		tr.X = append(tr.X, row[0])
		tr.Y = append(tr.Y, sde.Vector[float64](row[1:]))
	}
	return tr, nil
}

// LoadMean rebuilds the per-time part of the stored summary.
func (s *Store) LoadMean(runID string) (*analysis.Summary, error) {
	rows, err := s.readCSV(runID, meanFile)
	if err != nil {
		return nil, err
	}

	sum := &analysis.Summary{
		Times: make([]float64, 0, len(rows)),
		Mean:  make([]float64, 0, len(rows)),
		Std:   make([]float64, 0, len(rows)),
		Count: make([]int, 0, len(rows)),
	}
	for i, row := range rows {
		if len(row) != 4 {
			return nil, errors.Errorf("%s line %d: expected 4 fields, got %d", meanFile, i+2, len(row))
		}
		sum.Times = append(sum.Times, row[0])
		sum.Mean = append(sum.Mean, row[1])
		sum.Std = append(sum.Std, row[2])
		sum.Count = append(sum.Count, int(row[3]))
	}
	return sum, nil
}
