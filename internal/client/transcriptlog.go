package client

import (
	"sort"
	"sync"

	"github.com/lexbridge/meetsync/internal/domain"
)

// SegmentLog merges relayed transcript fragments. The relay gives no
// ordering or dedup guarantees, so the client dedups by segment id and keeps
// the list sorted by timestamp ascending.
type SegmentLog struct {
	mu   sync.Mutex
	byID map[string]struct{}
	list []domain.TranscriptSegment
}

func NewSegmentLog() *SegmentLog {
	return &SegmentLog{byID: make(map[string]struct{})}
}

// Add inserts the segment unless one with the same id is already present.
// Reports whether the segment was new.
func (l *SegmentLog) Add(seg domain.TranscriptSegment) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byID[seg.ID]; ok {
		return false
	}
	l.byID[seg.ID] = struct{}{}
	l.list = append(l.list, seg)
	sort.SliceStable(l.list, func(i, j int) bool {
		return l.list[i].Timestamp < l.list[j].Timestamp
	})
	return true
}

func (l *SegmentLog) Segments() []domain.TranscriptSegment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.TranscriptSegment, len(l.list))
	copy(out, l.list)
	return out
}

func (l *SegmentLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byID = make(map[string]struct{})
	l.list = nil
}
