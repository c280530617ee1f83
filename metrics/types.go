// Package metrics records document processing measurements. Collector
// exports them to Prometheus and Store keeps an in-memory summary for the
// stats endpoint.
package metrics

import "time"

// Document status labels. They match the history statuses in package db.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// UnknownKind labels documents whose kind could not be determined.
const UnknownKind = "unknown"

// Health constants for SystemStatus
const (
	SystemHealthRunning  = "running"
	SystemHealthDegraded = "degraded"
)

// SystemStatus represents the overall service health.
type SystemStatus struct {
	// Health is "running", or "degraded" when most recent documents failed
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// Uptime is the duration since the service started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of the status snapshot
	LastCheck time.Time `json:"lastCheck"`
}

// DocumentMetrics represents aggregated document processing statistics.
type DocumentMetrics struct {
	// TotalProcessed is the number of uploads seen
	TotalProcessed int64 `json:"totalProcessed"`

	// TotalSuccess is the number of documents whose fields were extracted
	TotalSuccess int64 `json:"totalSuccess"`

	// TotalRejected is the number of uploads refused before decoding
	TotalRejected int64 `json:"totalRejected"`

	// TotalFailed is the number of documents that could not be decoded
	TotalFailed int64 `json:"totalFailed"`

	// BytesReceived is the sum of all upload sizes
	BytesReceived int64 `json:"bytesReceived"`

	// ByKind contains per document kind statistics
	ByKind map[string]*KindMetrics `json:"byKind"`

	// Stages contains per processing stage timings
	Stages map[string]*StageMetrics `json:"stages"`

	// FieldHits counts how often each field was extracted
	FieldHits map[string]int64 `json:"fieldHits"`
}

// KindMetrics represents statistics for one document kind.
type KindMetrics struct {
	Count       int64   `json:"count"`
	SuccessRate float64 `json:"successRate"` // 0-100
}

// StageMetrics represents timings for one processing stage.
type StageMetrics struct {
	Count       int64         `json:"count"`
	AvgDuration time.Duration `json:"avgDuration"`
	MaxDuration time.Duration `json:"maxDuration"`
}
