package logging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Statistics represents the collected usage statistics
type Statistics struct {
	UniqueVisitors   map[string]time.Time `json:"uniqueVisitors"`   // IP -> Last Visit Time
	AnalysisRequests int                  `json:"analysisRequests"` // Total number of analysis requests
	ResearchRequests int                  `json:"researchRequests"` // Total number of keyword research requests
	ErrorCount       int                  `json:"errorCount"`       // Number of errors
	PopularURLs      map[string]int       `json:"popularUrls"`      // URL -> Count
	PopularKeywords  map[string]int       `json:"popularKeywords"`  // Seed keyword -> Count
	AverageAnalyzeMs float64              `json:"averageAnalyzeMs"` // Average analysis time in milliseconds
	TotalAnalyzeMs   float64              `json:"-"`                // Used to calculate average
	RequestCount     int                  `json:"-"`                // Used to calculate average
	LastPersisted    time.Time            `json:"lastPersisted"`    // Last time stats were saved

	path          string
	totalRequests int
	mutex         sync.RWMutex
}

// NewStatistics creates the statistics tracker, loading any previously
// persisted state from path.
func NewStatistics(path string) *Statistics {
	s := &Statistics{
		UniqueVisitors:  make(map[string]time.Time),
		PopularURLs:     make(map[string]int),
		PopularKeywords: make(map[string]int),
		LastPersisted:   time.Now(),
		path:            path,
	}
	if err := s.Load(); err != nil {
		fmt.Printf("Could not load existing statistics: %v\n", err)
	}
	return s
}

// TrackRequest records the visitor behind a request and returns the
// running request total since startup.
func (s *Statistics) TrackRequest(ip string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
	s.totalRequests++
	return s.totalRequests
}

// cleanURL removes API paths and query parameters, returns just the main URL
func cleanURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	// Don't track our own API URLs
	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	// Build clean URL with just scheme and host
	cleaned := u.Scheme + "://" + u.Host

	// Add path if it exists and isn't just "/"
	if u.Path != "" && u.Path != "/" {
		cleaned += u.Path
	}

	// Trim trailing slash
	return strings.TrimSuffix(cleaned, "/")
}

// TrackAnalysis records a page analysis request
func (s *Statistics) TrackAnalysis(url string, elapsedMs float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AnalysisRequests++

	// Clean the URL before storing
	cleanedURL := cleanURL(url)
	// Only track non-empty URLs (those that passed our filtering)
	if cleanedURL != "" {
		s.PopularURLs[cleanedURL]++
	}

	if hasError {
		s.ErrorCount++
	}

	// Update average analysis time
	s.TotalAnalyzeMs += elapsedMs
	s.RequestCount++
	s.AverageAnalyzeMs = s.TotalAnalyzeMs / float64(s.RequestCount)
}

// TrackResearch records a keyword research request
func (s *Statistics) TrackResearch(seed string, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ResearchRequests++

	seed = strings.ToLower(strings.TrimSpace(seed))
	if seed != "" {
		s.PopularKeywords[seed]++
	}

	if hasError {
		s.ErrorCount++
	}
}

// GetUniqueVisitorsCount returns the number of unique visitors in the last 24 hours
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.uniqueVisitorsLocked()
}

func (s *Statistics) uniqueVisitorsLocked() int {
	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)

	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}

	return count
}

func (s *Statistics) errorRateLocked() float64 {
	total := s.AnalysisRequests + s.ResearchRequests
	if total == 0 {
		return 0
	}
	return (float64(s.ErrorCount) / float64(total)) * 100
}

func topN(m map[string]int, n int) map[string]int {
	result := make(map[string]int)
	count := 0

	// Simple implementation - for production, use a heap or sorted data structure
	for key, freq := range m {
		if count < n {
			result[key] = freq
			count++
		}
	}

	return result
}

// GetErrorRate returns the error rate as a percentage
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.errorRateLocked()
}

// Save persists the statistics to the configured file
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = time.Now()

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("could not create statistics file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("could not encode statistics: %v", err)
	}

	return nil
}

// Load reads the statistics from the configured file
func (s *Statistics) Load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("could not open statistics file: %v", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(s); err != nil {
		return fmt.Errorf("could not decode statistics: %v", err)
	}

	return nil
}

// Snapshot returns a copy of the current statistics. Popular URLs and
// keywords are only included in development mode.
func (s *Statistics) Snapshot(devMode bool) map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snapshot := map[string]interface{}{
		"uniqueVisitors24h": s.uniqueVisitorsLocked(),
		"analysisRequests":  s.AnalysisRequests,
		"researchRequests":  s.ResearchRequests,
		"errorRate":         s.errorRateLocked(),
		"averageAnalyzeMs":  s.AverageAnalyzeMs,
	}

	if devMode {
		snapshot["popularUrls"] = topN(s.PopularURLs, 5)
		snapshot["popularKeywords"] = topN(s.PopularKeywords, 5)
	}

	return snapshot
}
