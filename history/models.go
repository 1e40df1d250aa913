package history

import (
	"encoding/json"
	"time"
)

// AnalysisRow is one stored analysis. List queries leave Report empty;
// single-row lookups include the full JSON document.
type AnalysisRow struct {
	ID           int64           `json:"id"`
	URL          string          `json:"url"`
	OverallScore int             `json:"overallScore"`
	Report       json.RawMessage `json:"report,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TrackedKeyword is a keyword/domain pair under rank tracking. The
// latest fields are nil until the first ranking sample exists.
type TrackedKeyword struct {
	ID             int64      `json:"id"`
	Keyword        string     `json:"keyword"`
	Domain         string     `json:"domain"`
	CreatedAt      time.Time  `json:"createdAt"`
	LatestPosition *int       `json:"latestPosition,omitempty"`
	LastCheckedAt  *time.Time `json:"lastCheckedAt,omitempty"`
}

// RankingSample is one point-in-time position for a tracked keyword.
type RankingSample struct {
	ID               int64     `json:"id"`
	TrackedKeywordID int64     `json:"trackedKeywordId"`
	Position         int       `json:"position"`
	CheckedAt        time.Time `json:"checkedAt"`
}
