package model

import "time"

// RunStatus represents the current state of a scrape run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusScraping   RunStatus = "scraping"
	RunStatusProcessing RunStatus = "processing"
	RunStatusExporting  RunStatus = "exporting"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// StageCount records the record count remaining after a pipeline stage.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// RunResult holds the final outcome of a scrape run.
type RunResult struct {
	TotalScraped int          `json:"total_scraped"`
	TotalKept    int          `json:"total_kept"`
	Stages       []StageCount `json:"stages"`
	Platforms    []string     `json:"platforms"`
	ExportPath   string       `json:"export_path,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// ScrapeRun represents a single scrape-and-reconcile run.
type ScrapeRun struct {
	ID        string        `json:"id"`
	Filter    *SearchFilter `json:"filter,omitempty"`
	Status    RunStatus     `json:"status"`
	Result    *RunResult    `json:"result,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
