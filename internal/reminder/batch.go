package reminder

import (
	"sync"

	"github.com/ukydev/garage-logbook/internal/models"
)

// Batch holds the alerts of the latest evaluation for one vehicle until the
// owner dismisses them one by one.
type Batch struct {
	mu     sync.RWMutex
	alerts []models.Alert
}

// NewBatch creates a batch from an evaluation result.
func NewBatch(alerts []models.Alert) *Batch {
	b := &Batch{}
	b.alerts = append(b.alerts, alerts...)
	return b
}

// Alerts returns a copy of the pending alerts.
func (b *Batch) Alerts() []models.Alert {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Alert, len(b.alerts))
	copy(out, b.alerts)
	return out
}

// Remove drops the alert for recordID and reports whether one was pending.
func (b *Batch) Remove(recordID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, a := range b.alerts {
		if a.RecordID == recordID {
			b.alerts = append(b.alerts[:i], b.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// Empty reports whether every alert has been dismissed.
func (b *Batch) Empty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.alerts) == 0
}
