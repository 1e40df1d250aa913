// Package history persists analyses, tracked keywords and their
// ranking samples to SQLite.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/seo-insights/backend/analyzer"
)

// Store handles all history database operations.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (creating if needed) the SQLite database at path and
// applies the schema.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAnalysis stores a finished report and returns its row id.
func (s *Store) SaveAnalysis(report *analyzer.Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to encode report: %w", err)
	}

	result, err := s.db.Exec(`
		INSERT INTO analyses (url, overall_score, report, created_at)
		VALUES (?, ?, ?, ?)
	`, report.URL, report.OverallScore, string(payload), time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RecentAnalyses lists the newest analyses without their report blobs.
func (s *Store) RecentAnalyses(limit int) ([]AnalysisRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, url, overall_score, created_at
		FROM analyses
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []AnalysisRow
	for rows.Next() {
		var row AnalysisRow
		if err := rows.Scan(&row.ID, &row.URL, &row.OverallScore, &row.CreatedAt); err != nil {
			return nil, err
		}
		analyses = append(analyses, row)
	}
	return analyses, rows.Err()
}

// GetAnalysis retrieves one stored analysis with its full report.
// Returns nil without error when the id does not exist.
func (s *Store) GetAnalysis(id int64) (*AnalysisRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row AnalysisRow
	var report string
	err := s.db.QueryRow(`
		SELECT id, url, overall_score, report, created_at
		FROM analyses WHERE id = ?
	`, id).Scan(&row.ID, &row.URL, &row.OverallScore, &report, &row.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.Report = json.RawMessage(report)
	return &row, nil
}

// TrackKeyword registers a keyword/domain pair for rank tracking.
// Tracking the same pair twice returns the existing row.
func (s *Store) TrackKeyword(keyword, domain string) (*TrackedKeyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	domain = strings.ToLower(strings.TrimSpace(domain))

	var existing TrackedKeyword
	err := s.db.QueryRow(`
		SELECT id, keyword, domain, created_at
		FROM tracked_keywords WHERE keyword = ? AND domain = ?
	`, keyword, domain).Scan(&existing.ID, &existing.Keyword, &existing.Domain, &existing.CreatedAt)
	if err == nil {
		return &existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	createdAt := time.Now().UTC()
	result, err := s.db.Exec(`
		INSERT INTO tracked_keywords (keyword, domain, created_at)
		VALUES (?, ?, ?)
	`, keyword, domain, createdAt)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &TrackedKeyword{ID: id, Keyword: keyword, Domain: domain, CreatedAt: createdAt}, nil
}

// GetTrackedKeyword retrieves one tracked keyword by id. Returns nil
// without error when the id does not exist.
func (s *Store) GetTrackedKeyword(id int64) (*TrackedKeyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var kw TrackedKeyword
	err := s.db.QueryRow(`
		SELECT id, keyword, domain, created_at
		FROM tracked_keywords WHERE id = ?
	`, id).Scan(&kw.ID, &kw.Keyword, &kw.Domain, &kw.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

// TrackedKeywords lists every tracked keyword with its most recent
// ranking sample, newest keywords first.
func (s *Store) TrackedKeywords() ([]TrackedKeyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT t.id, t.keyword, t.domain, t.created_at, r.position, r.checked_at
		FROM tracked_keywords t
		LEFT JOIN rankings r ON r.id = (
			SELECT id FROM rankings
			WHERE keyword_id = t.id
			ORDER BY checked_at DESC, id DESC
			LIMIT 1
		)
		ORDER BY t.created_at DESC, t.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []TrackedKeyword
	for rows.Next() {
		var kw TrackedKeyword
		var position sql.NullInt64
		var checkedAt sql.NullTime
		if err := rows.Scan(&kw.ID, &kw.Keyword, &kw.Domain, &kw.CreatedAt, &position, &checkedAt); err != nil {
			return nil, err
		}
		if position.Valid {
			p := int(position.Int64)
			kw.LatestPosition = &p
		}
		if checkedAt.Valid {
			t := checkedAt.Time
			kw.LastCheckedAt = &t
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

// AddRanking stores a new position sample for a tracked keyword.
func (s *Store) AddRanking(keywordID int64, position int) (*RankingSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkedAt := time.Now().UTC()
	result, err := s.db.Exec(`
		INSERT INTO rankings (keyword_id, position, checked_at)
		VALUES (?, ?, ?)
	`, keywordID, position, checkedAt)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &RankingSample{ID: id, TrackedKeywordID: keywordID, Position: position, CheckedAt: checkedAt}, nil
}

// RankingHistory lists all samples for a keyword, oldest first.
func (s *Store) RankingHistory(keywordID int64) ([]RankingSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, keyword_id, position, checked_at
		FROM rankings
		WHERE keyword_id = ?
		ORDER BY checked_at ASC, id ASC
	`, keywordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []RankingSample
	for rows.Next() {
		var sample RankingSample
		if err := rows.Scan(&sample.ID, &sample.TrackedKeywordID, &sample.Position, &sample.CheckedAt); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}
