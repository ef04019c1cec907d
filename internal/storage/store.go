package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/dpendulum/internal/dynamo"
	"github.com/san-kum/dpendulum/internal/metrics"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
)

const (
	DefaultDir = ".dpendulum"

	metadataFile = "metadata.json"
	statesFile   = "states.csv"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Params     physics.Params     `json:"params"`
	Initial    dynamo.State       `json:"initial"`
	TMax       float64            `json:"t_max"`
	Dt         float64            `json:"dt"`
	Integrator string             `json:"integrator"`
	Tolerance  dynamo.Tolerance   `json:"tolerance"`
	Points     int                `json:"points"`
	Accepted   int                `json:"accepted_steps"`
	Rejected   int                `json:"rejected_steps"`
	Energy     metrics.Report     `json:"energy"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Error      string             `json:"error,omitempty"` // set when only a prefix of the run succeeded
}

// Save writes a new run directory holding meta and the rows of tr. ID,
// Timestamp, Points and the step counters of meta are filled in here.
func (s *Store) Save(meta RunMetadata, tr *sim.Trajectory) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	runDir, runID, err := s.createRunDir(now)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Points = tr.Len()
	meta.Accepted = tr.Stats.Accepted
	meta.Rejected = tr.Stats.Rejected

	// metadata.json goes last: List only shows runs whose states are on disk.
	if err := writeStates(filepath.Join(runDir, statesFile), tr); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("write metadata: %w", err)
	}

	return runID, nil
}

func writeStates(path string, tr *sim.Trajectory) error {
	csvFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer csvFile.Close()

	if err := gocsv.Marshal(tr.Rows(), csvFile); err != nil {
		return fmt.Errorf("write states: %w", err)
	}
	return csvFile.Close()
}

// createRunDir claims run_<unixnano>, moving forward a nanosecond at a time
// if another run got there first.
func (s *Store) createRunDir(now time.Time) (string, string, error) {
	nano := now.UnixNano()
	for {
		runID := fmt.Sprintf("run_%d", nano)
		runDir := filepath.Join(s.baseDir, runID)

		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runDir, runID, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		nano++
	}
}

func writeMetadata(path string, meta RunMetadata) error {
	metaFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return metaFile.Close()
}

// List returns the metadata of every stored run, oldest first. Directories
// without readable metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
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

func (s *Store) LoadTrajectory(runID string) (*sim.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []sim.Row
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("run %s: read states: %w", runID, err)
	}

	return sim.FromRows(rows), nil
}

// Delete removes a stored run.
func (s *Store) Delete(runID string) error {
	runDir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(runDir, metadataFile)); err != nil {
		return err
	}
	return os.RemoveAll(runDir)
}
