package api

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/cptinfo/internal/report"
)

const defaultStoreCapacity = 256

type reportRecord struct {
	Report    *report.Report
	CreatedAt time.Time
}

// ReportStore keeps recent inspection reports in memory. When full, the
// oldest report is evicted.
type ReportStore struct {
	mu       sync.Mutex
	capacity int
	reports  map[string]*reportRecord
	order    []string
}

func NewReportStore(capacity int) *ReportStore {
	if capacity <= 0 {
		capacity = defaultStoreCapacity
	}
	return &ReportStore{
		capacity: capacity,
		reports:  make(map[string]*reportRecord),
	}
}

// Save assigns r an id when it has none and stores it.
func (s *ReportStore) Save(r *report.Report, now time.Time) string {
	if r.ID == "" {
		r.ID = newReportID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.reports[r.ID] = &reportRecord{Report: r, CreatedAt: now}
	for len(s.order) > s.capacity {
		delete(s.reports, s.order[0])
		s.order = s.order[1:]
	}
	return r.ID
}

func (s *ReportStore) Get(id string) (*reportRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.reports[id]
	return rec, ok
}

func (s *ReportStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return false
	}
	delete(s.reports, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns summaries of the stored reports, newest first.
func (s *ReportStore) List() []ReportSummary {
	s.mu.Lock()
	out := make([]ReportSummary, 0, len(s.reports))
	for _, rec := range s.reports {
		out = append(out, summarize(rec))
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *ReportStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func summarize(rec *reportRecord) ReportSummary {
	r := rec.Report
	sum := ReportSummary{
		ID:        r.ID,
		File:      r.File,
		Size:      r.Size,
		Version:   r.Version,
		Anomalies: len(r.Anomalies),
		CreatedAt: rec.CreatedAt.Unix(),
	}
	if r.Error != nil {
		sum.Error = r.Error.Kind
	}
	return sum
}

func newReportID() string {
	return "rpt_" + uuid.NewString()
}
