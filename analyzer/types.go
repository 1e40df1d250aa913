package analyzer

import "time"

// Factor names as they appear in reports and the weight table.
const (
	FactorTitle     = "title"
	FactorMeta      = "meta_description"
	FactorHeaders   = "headers"
	FactorContent   = "content"
	FactorImages    = "images"
	FactorURL       = "url"
	FactorTechnical = "technical"
)

// FactorResult is one extractor's verdict on a single SEO factor.
// Issues and Recommendations are index-paired.
type FactorResult struct {
	Factor          string   `json:"factor"`
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

func (r *FactorResult) addIssue(issue, recommendation string) {
	r.Issues = append(r.Issues, issue)
	r.Recommendations = append(r.Recommendations, recommendation)
}

// Recommendation is one prioritized action item in the final report.
type Recommendation struct {
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
	Impact         string `json:"impact"`
}

// PageDetails carries page facts displayed alongside the scores.
type PageDetails struct {
	Title           string `json:"title"`
	MetaDescription string `json:"metaDescription"`
	WordCount       int    `json:"wordCount"`
	ParagraphCount  int    `json:"paragraphCount"`
	HeaderCount     int    `json:"headerCount"`
	ImageCount      int    `json:"imageCount"`
	InternalLinks   int    `json:"internalLinks"`
	ExternalLinks   int    `json:"externalLinks"`
	PageSizeBytes   int    `json:"pageSizeBytes"`
	FetchAttempts   int    `json:"fetchAttempts"`
	FetchMs         int64  `json:"fetchMs"`
}

// Report is the complete result of analyzing one page.
type Report struct {
	URL             string                  `json:"url"`
	FetchedAt       time.Time               `json:"fetchedAt"`
	Factors         map[string]FactorResult `json:"factors"`
	OverallScore    int                     `json:"overallScore"`
	Recommendations []Recommendation        `json:"recommendations"`
	Page            PageDetails             `json:"page"`
}
