package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/san-kum/liftmc/internal/config"
	"github.com/san-kum/liftmc/internal/montecarlo"
	"github.com/san-kum/liftmc/internal/stats"
)

const (
	summaryFile   = "summary.json"
	histogramFile = "histogram.csv"
)

// ErrNonFiniteSummary is returned by Save when the run's moments are NaN or
// Inf and cannot be encoded as JSON.
var ErrNonFiniteSummary = errors.New("storage: summary is not finite")

// Store keeps run summaries on disk, one directory per run. Individual trial
// samples are never written.
type Store struct {
	baseDir string
	clock   clockwork.Clock
}

func New(baseDir string) *Store {
	return NewWithClock(baseDir, clockwork.NewRealClock())
}

func NewWithClock(baseDir string, clock clockwork.Clock) *Store {
	return &Store{baseDir: baseDir, clock: clock}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Seed       int64             `json:"seed"`
	Trials     int               `json:"trials"`
	Method     string            `json:"method"`
	Replicates int               `json:"replicates"`
	Gas        config.GasConfig  `json:"gas"`
	Inputs     montecarlo.Inputs `json:"inputs"`
	Summary    stats.Summary     `json:"summary"`
}

// Record is what a caller hands to Save.
type Record struct {
	Seed       int64
	Config     *config.Config
	Summary    stats.Summary
	Histogram  stats.Histogram
	Replicates int
}

// Save writes rec under a new run directory and returns its id.
func (s *Store) Save(rec Record) (string, error) {
	if !rec.Summary.IsFinite() {
		return "", ErrNonFiniteSummary
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	now := s.clock.Now()
	runID, err := s.newRunID(now)
	if err != nil {
		return "", err
	}
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  now.UTC(),
		Seed:       rec.Seed,
		Trials:     rec.Config.Trials,
		Method:     rec.Config.Method,
		Replicates: rec.Replicates,
		Gas:        rec.Config.Gas,
		Inputs:     rec.Config.Inputs,
		Summary:    rec.Summary,
	}
	if meta.Replicates == 0 {
		meta.Replicates = 1
	}

	if err := writeJSON(filepath.Join(runDir, summaryFile), meta); err != nil {
		return "", err
	}
	if err := writeHistogram(filepath.Join(runDir, histogramFile), rec.Histogram); err != nil {
		return "", err
	}
	return runID, nil
}

// newRunID derives an id from the timestamp, suffixing a counter when a run
// already exists for the same second.
func (s *Store) newRunID(now time.Time) (string, error) {
	base := fmt.Sprintf("run_%d", now.Unix())
	id := base
	for i := 1; ; i++ {
		_, err := os.Stat(filepath.Join(s.baseDir, id))
		if os.IsNotExist(err) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
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

func writeHistogram(path string, h stats.Histogram) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"lower", "upper", "count"}); err != nil {
		return err
	}
	for i, count := range h.Counts {
		row := []string{
			strconv.FormatFloat(h.Edges[i], 'f', 6, 64),
			strconv.FormatFloat(h.Edges[i+1], 'f', 6, 64),
			strconv.FormatFloat(count, 'f', 0, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first. Directories without a
// valid summary are skipped.
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
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, summaryFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadHistogram(runID string) (stats.Histogram, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, histogramFile))
	if err != nil {
		return stats.Histogram{}, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return stats.Histogram{}, err
	}

	var h stats.Histogram
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) != 3 {
			return stats.Histogram{}, fmt.Errorf("%s line %d: want 3 fields, got %d", histogramFile, i+1, len(record))
		}
		var vals [3]float64
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return stats.Histogram{}, fmt.Errorf("%s line %d: %w", histogramFile, i+1, err)
			}
			vals[j] = v
		}
		if len(h.Edges) == 0 {
			h.Edges = append(h.Edges, vals[0])
		}
		h.Edges = append(h.Edges, vals[1])
		h.Counts = append(h.Counts, vals[2])
	}
	return h, nil
}

// ExportData is the single-document form of a stored run.
type ExportData struct {
	RunMetadata
	Histogram stats.Histogram `json:"histogram"`
}

// ExportJSON writes the run's metadata and histogram as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	h, err := s.LoadHistogram(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Histogram: h})
}
