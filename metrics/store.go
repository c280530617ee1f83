package metrics

import (
	"sync"
	"time"
)

// Store is an in-memory summary of document processing. It implements the
// docparse recorder interface and is safe for concurrent use.
//
// Usage:
//
//	store := NewStore(DefaultStoreConfig(), time.Now())
//	store.ObserveDocument("pdf", StatusSuccess)
//	summary := store.GetDocumentMetrics()
type Store struct {
	mu sync.RWMutex

	// Recent outcomes, newest at head-1
	recent     []string
	recentCap  int
	recentHead int
	recentSize int

	totalDocs     int64
	totalSuccess  int64
	totalRejected int64
	totalFailed   int64
	totalBytes    int64
	byKind        map[string]*kindStats
	byStage       map[string]*stageStats
	fieldHits     map[string]int64

	startTime time.Time
	version   string
}

type kindStats struct {
	count        int64
	successCount int64
}

type stageStats struct {
	count int64
	total time.Duration
	max   time.Duration
}

// StoreConfig configures the Store behavior.
type StoreConfig struct {
	// RecentCapacity is how many recent outcomes feed the health check
	RecentCapacity int
	// Version is the application version string
	Version string
}

// DefaultStoreConfig returns a default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		RecentCapacity: 20,
		Version:        "0.0.0",
	}
}

// NewStore creates a Store. startTime is used to calculate uptime.
func NewStore(config StoreConfig, startTime time.Time) *Store {
	capacity := config.RecentCapacity
	if capacity < 1 {
		capacity = 20
	}
	return &Store{
		recent:    make([]string, capacity),
		recentCap: capacity,
		byKind:    make(map[string]*kindStats),
		byStage:   make(map[string]*stageStats),
		fieldHits: make(map[string]int64),
		startTime: startTime,
		version:   config.Version,
	}
}

// ObserveUpload adds an upload size to the byte total.
func (s *Store) ObserveUpload(size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalBytes += size
}

// ObserveDocument records the outcome of one parse.
func (s *Store) ObserveDocument(kind, status string) {
	if kind == "" {
		kind = UnknownKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent[s.recentHead] = status
	s.recentHead = (s.recentHead + 1) % s.recentCap
	if s.recentSize < s.recentCap {
		s.recentSize++
	}

	s.totalDocs++
	switch status {
	case StatusSuccess:
		s.totalSuccess++
	case StatusRejected:
		s.totalRejected++
	default:
		s.totalFailed++
	}

	stats, ok := s.byKind[kind]
	if !ok {
		stats = &kindStats{}
		s.byKind[kind] = stats
	}
	stats.count++
	if status == StatusSuccess {
		stats.successCount++
	}
}

// ObserveStage records how long a processing stage took.
func (s *Store) ObserveStage(stage string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.byStage[stage]
	if !ok {
		stats = &stageStats{}
		s.byStage[stage] = stats
	}
	stats.count++
	stats.total += d
	if d > stats.max {
		stats.max = d
	}
}

// ObserveFields counts each extracted field once.
func (s *Store) ObserveFields(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.fieldHits[name]++
	}
}

// GetDocumentMetrics returns aggregated processing statistics.
func (s *Store) GetDocumentMetrics() DocumentMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := DocumentMetrics{
		TotalProcessed: s.totalDocs,
		TotalSuccess:   s.totalSuccess,
		TotalRejected:  s.totalRejected,
		TotalFailed:    s.totalFailed,
		BytesReceived:  s.totalBytes,
		ByKind:         make(map[string]*KindMetrics, len(s.byKind)),
		Stages:         make(map[string]*StageMetrics, len(s.byStage)),
		FieldHits:      make(map[string]int64, len(s.fieldHits)),
	}

	for kind, stats := range s.byKind {
		var successRate float64
		if stats.count > 0 {
			successRate = float64(stats.successCount) / float64(stats.count) * 100
		}
		m.ByKind[kind] = &KindMetrics{Count: stats.count, SuccessRate: successRate}
	}
	for stage, stats := range s.byStage {
		var avg time.Duration
		if stats.count > 0 {
			avg = stats.total / time.Duration(stats.count)
		}
		m.Stages[stage] = &StageMetrics{Count: stats.count, AvgDuration: avg, MaxDuration: stats.max}
	}
	for name, hits := range s.fieldHits {
		m.FieldHits[name] = hits
	}
	return m
}

// GetSystemStatus reports the service as degraded when more than half of
// the recent documents failed to decode. Rejected uploads are client
// errors and do not count against health.
func (s *Store) GetSystemStatus() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	failed := 0
	for i := 0; i < s.recentSize; i++ {
		if s.recent[i] == StatusFailed {
			failed++
		}
	}

	health := SystemHealthRunning
	if s.recentSize > 0 && failed*2 > s.recentSize {
		health = SystemHealthDegraded
	}

	return SystemStatus{
		Health:    health,
		Version:   s.version,
		Uptime:    time.Since(s.startTime),
		LastCheck: time.Now(),
	}
}
