// Package storage exports complexity runs as JSON records for offline
// inspection.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/haskel/bigo/internal/complexity"
	"github.com/haskel/bigo/internal/monitor"
)

const (
	currentVersion = 1
	recordExt      = ".json"
)

// ErrNotFound indicates that no record exists under the given name.
var ErrNotFound = errors.New("storage: record not found")

// Record is the persisted form of one run.
type Record struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	Label     string `json:"label"`
	Candidate string `json:"candidate"`
	Model     string `json:"model"`
	Expected  string `json:"expected,omitempty"`
	Passed    bool   `json:"passed"`

	ElapsedMS float64             `json:"elapsed_ms"`
	SpentMS   float64             `json:"spent_ms"`
	Interval  complexity.Interval `json:"interval"`
	Restarted bool                `json:"restarted"`
	Samples   int                 `json:"samples"`

	// Order lists the classes in bank order; Classes is keyed by name.
	Order   []string               `json:"order"`
	Classes map[string]ClassRecord `json:"classes"`

	Host any `json:"host,omitempty"`
}

// ClassRecord holds the ratio series and fit of one growth class.
type ClassRecord struct {
	X        []int     `json:"x"`
	Y        []float64 `json:"y"`
	A        float64   `json:"a"`
	B        float64   `json:"b"`
	Error    *float64  `json:"error"`
	Accepted bool      `json:"accepted"`
}

// RunStore writes one file per run under <dir>/<label>/<timestamp>.json.
type RunStore struct {
	dir    string
	logger *slog.Logger
	host   monitor.Monitor
	now    func() time.Time

	mu sync.Mutex
}

// Option configures a RunStore.
type Option func(*RunStore)

// WithHost attaches a snapshot of m to every record.
func WithHost(m monitor.Monitor) Option {
	return func(s *RunStore) {
		s.host = m
	}
}

// New creates a RunStore rooted at dir.
func New(dir string, logger *slog.Logger, opts ...Option) *RunStore {
	s := &RunStore{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the root directory.
func (s *RunStore) Dir() string {
	return s.dir
}

// NewRecord converts a result into its persisted form.
func NewRecord(res *complexity.Result, createdAt time.Time) *Record {
	rec := &Record{
		Version:   currentVersion,
		CreatedAt: createdAt,
		Label:     res.Label,
		Candidate: res.Candidate,
		Model:     res.Guess,
		Expected:  res.Expected,
		Passed:    res.Passed,
		ElapsedMS: durationMS(res.Elapsed),
		SpentMS:   durationMS(res.Spent),
		Interval:  res.Interval,
		Restarted: res.Restarted,
		Samples:   len(res.Samples),
		Order:     make([]string, 0, len(res.Ratios)),
		Classes:   make(map[string]ClassRecord, len(res.Ratios)),
	}

	for _, series := range res.Ratios {
		class := ClassRecord{
			X: make([]int, len(series.Points)),
			Y: make([]float64, len(series.Points)),
		}
		for i, p := range series.Points {
			class.X[i] = p.N
			class.Y[i] = p.Ratio
		}
		if fit, ok := res.Fit(series.Name); ok {
			class.A = finiteOrZero(fit.A)
			class.B = finiteOrZero(fit.B)
			class.Accepted = fit.Accepted
			if !math.IsInf(fit.Error, 0) && !math.IsNaN(fit.Error) {
				e := fit.Error
				class.Error = &e
			}
		}
		rec.Order = append(rec.Order, series.Name)
		rec.Classes[series.Name] = class
	}

	return rec
}

// Export writes res as a new record. It implements complexity.Exporter.
func (s *RunStore) Export(res *complexity.Result) error {
	now := s.now()
	rec := NewRecord(res, now)

	if s.host != nil {
		snapshot, err := s.host.Collect()
		if err != nil {
			s.logger.Warn("failed to snapshot host", "monitor", s.host.Name(), "error", err)
		} else {
			rec.Host = snapshot
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, safeName(res.Label))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating record dir: %w", err)
	}

	filePath := filepath.Join(dir, fmt.Sprintf("%d%s", now.UnixNano(), recordExt))
	if err := writeJSON(filePath, rec); err != nil {
		return err
	}

	s.logger.Info("exported run", "label", res.Label, "path", filePath)
	return nil
}

// Labels returns the labels that have records, sorted.
func (s *RunStore) Labels() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	labels := []string{}
	for _, e := range entries {
		if e.IsDir() {
			labels = append(labels, e.Name())
		}
	}
	sort.Strings(labels)
	return labels, nil
}

// List returns the record names stored for label, oldest first.
func (s *RunStore) List(label string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, safeName(label)))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), recordExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads one record.
func (s *RunStore) Load(label, name string) (*Record, error) {
	if name != filepath.Base(name) || !strings.HasSuffix(name, recordExt) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	file, err := os.Open(filepath.Join(s.dir, safeName(label), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, label, name)
		}
		return nil, err
	}
	defer file.Close()

	var rec Record
	if err := json.NewDecoder(file).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return &rec, nil
}

func writeJSON(filePath string, v any) error {
	tempPath := filePath + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	// Atomic rename
	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

// safeName maps a label onto a single path element.
func safeName(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		return "_"
	}
	return name
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
