package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c := newCollector(prometheus.NewRegistry(), nil)

	c.ObserveDocument("pdf", StatusSuccess)
	c.ObserveDocument("pdf", StatusSuccess)
	c.ObserveDocument("", StatusRejected)
	c.ObserveFields([]string{"title", "priority"})
	c.ObserveFields([]string{"priority"})

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"pdf success", c.documents.WithLabelValues("pdf", StatusSuccess), 2},
		{"unknown rejected", c.documents.WithLabelValues(UnknownKind, StatusRejected), 1},
		{"priority field", c.fields.WithLabelValues("priority"), 2},
		{"title field", c.fields.WithLabelValues("title"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.collector); got != tt.want {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollector_Histograms(t *testing.T) {
	c := newCollector(prometheus.NewRegistry(), nil)

	c.ObserveUpload(2048)
	c.ObserveStage("decode", 20*time.Millisecond)
	c.ObserveStage("extract", 5*time.Millisecond)

	if n := testutil.CollectAndCount(c.duration, "aura_extraction_duration_seconds"); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
	if n := testutil.CollectAndCount(c.uploads, "aura_extraction_upload_bytes"); n != 1 {
		t.Errorf("upload series = %d, want 1", n)
	}
}

func TestCollector_MirrorsIntoStore(t *testing.T) {
	store := NewStore(DefaultStoreConfig(), time.Now())
	c := newCollector(prometheus.NewRegistry(), store)

	c.ObserveUpload(100)
	c.ObserveDocument("docx", StatusSuccess)
	c.ObserveStage("decode", time.Millisecond)
	c.ObserveFields([]string{"status"})

	if c.Store() != store {
		t.Fatal("Store() did not return the mirrored store")
	}
	m := store.GetDocumentMetrics()
	if m.TotalProcessed != 1 || m.BytesReceived != 100 || m.FieldHits["status"] != 1 || m.Stages["decode"].Count != 1 {
		t.Errorf("store not updated: %+v", m)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(nil)
	c.ObserveDocument("pdf", StatusFailed)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`aura_extraction_documents_total{kind="pdf",status="failed"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
