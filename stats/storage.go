// Package stats persists monthly usage counters so operators can see
// how much analysis and research traffic the instance handles.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const statsFile = "monthly_stats.json"

// saveInterval is how often the background writer flushes dirty
// counters to disk.
const saveInterval = 5 * time.Minute

// MonthlyStats holds the counters for one calendar month.
type MonthlyStats struct {
	Analyses            int       `json:"analyses"`
	Researches          int       `json:"researches"`
	FetchCacheHits      int       `json:"fetchCacheHits"`
	FetchCacheMisses    int       `json:"fetchCacheMisses"`
	ResearchCacheHits   int       `json:"researchCacheHits"`
	ResearchCacheMisses int       `json:"researchCacheMisses"`
	EstimatedRecords    int       `json:"estimatedRecords"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

// Storage accumulates per-month counters and persists them in the
// background. A nil *Storage ignores all recordings.
type Storage struct {
	path string

	mutex sync.RWMutex
	data  map[string]*MonthlyStats
	dirty bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewStorage creates the stats store under dataDir and starts the
// background writer.
func NewStorage(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	s := &Storage{
		path: filepath.Join(dataDir, statsFile),
		data: make(map[string]*MonthlyStats),
		done: make(chan struct{}),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.backgroundWriter()

	return s, nil
}

func currentMonth() string {
	return time.Now().Format("2006-01")
}

func (s *Storage) monthLocked(key string) *MonthlyStats {
	month, ok := s.data[key]
	if !ok {
		month = &MonthlyStats{}
		s.data[key] = month
	}
	return month
}

// RecordAnalysis counts one completed page analysis and whether it was
// served from the fetch cache.
func (s *Storage) RecordAnalysis(cacheHit bool) {
	if s == nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	month := s.monthLocked(currentMonth())
	month.Analyses++
	if cacheHit {
		month.FetchCacheHits++
	} else {
		month.FetchCacheMisses++
	}
	month.LastUpdated = time.Now()
	s.dirty = true
}

// RecordResearch counts one completed keyword research call and whether
// it was served from the research cache.
func (s *Storage) RecordResearch(cacheHit bool) {
	if s == nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	month := s.monthLocked(currentMonth())
	month.Researches++
	if cacheHit {
		month.ResearchCacheHits++
	} else {
		month.ResearchCacheMisses++
	}
	month.LastUpdated = time.Now()
	s.dirty = true
}

// RecordEstimates counts keyword records filled by the deterministic
// estimator rather than a real provider.
func (s *Storage) RecordEstimates(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	month := s.monthLocked(currentMonth())
	month.EstimatedRecords += n
	month.LastUpdated = time.Now()
	s.dirty = true
}

// CurrentMonth returns a copy of this month's counters.
func (s *Storage) CurrentMonth() MonthlyStats {
	if s == nil {
		return MonthlyStats{}
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if month, ok := s.data[currentMonth()]; ok {
		return *month
	}
	return MonthlyStats{}
}

// AllMonths returns every stored month key, newest first.
func (s *Storage) AllMonths() []string {
	if s == nil {
		return nil
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.data))
	for key := range s.data {
		months = append(months, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// Month returns a copy of the counters for one month key.
func (s *Storage) Month(key string) (MonthlyStats, bool) {
	if s == nil {
		return MonthlyStats{}, false
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	month, ok := s.data[key]
	if !ok {
		return MonthlyStats{}, false
	}
	return *month, true
}

// Cleanup drops every month except the current and previous one.
func (s *Storage) Cleanup() {
	if s == nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	keep := map[string]bool{
		now.Format("2006-01"):                   true,
		now.AddDate(0, -1, 0).Format("2006-01"): true,
	}

	for key := range s.data {
		if !keep[key] {
			delete(s.data, key)
			s.dirty = true
		}
	}
}

// Save flushes the counters to disk immediately.
func (s *Storage) Save() error {
	if s == nil {
		return nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.saveLocked()
}

// saveLocked writes atomically: temp file first, then rename.
func (s *Storage) saveLocked() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("failed to replace stats file: %w", err)
	}

	s.dirty = false
	return nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read stats file: %w", err)
	}

	if err := json.Unmarshal(data, &s.data); err != nil {
		return fmt.Errorf("failed to parse stats file: %w", err)
	}
	return nil
}

func (s *Storage) backgroundWriter() {
	defer s.wg.Done()

	ticker := time.NewTicker(saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mutex.Lock()
			if s.dirty {
				s.saveLocked()
			}
			s.mutex.Unlock()
		case <-s.done:
			return
		}
	}
}

// Shutdown stops the background writer and performs a final save.
func (s *Storage) Shutdown() error {
	if s == nil {
		return nil
	}
	close(s.done)
	s.wg.Wait()
	return s.Save()
}
