package ledger

import (
	"context"
	"sync"
	"time"

	"authguard/internal/lockout/models"
	ksync "authguard/pkg/platform/sync"
)

// InMemoryLedger keeps records in process. It is not durable and not shared
// across instances, so it is only fit for development and tests.
type InMemoryLedger struct {
	mu      sync.RWMutex
	keyLock *ksync.KeyedMutex
	records map[string]*models.AttemptRecord
}

func NewInMemory() *InMemoryLedger {
	return &InMemoryLedger{
		keyLock: ksync.NewKeyedMutex(),
		records: make(map[string]*models.AttemptRecord),
	}
}

func (l *InMemoryLedger) lookup(id string) (*models.AttemptRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[id]
	return rec, ok
}

func (l *InMemoryLedger) Get(ctx context.Context, key models.AttemptKey) (*models.AttemptRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError(err, "get")
	}
	id := key.String()
	var out *models.AttemptRecord
	l.keyLock.With(id, func() {
		if rec, ok := l.lookup(id); ok {
			out = rec.Clone()
		}
	})
	return out, nil
}

func (l *InMemoryLedger) IncrementFailure(ctx context.Context, key models.AttemptKey, now time.Time) (*models.AttemptRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageError(err, "increment")
	}
	id := key.String()
	var out *models.AttemptRecord
	l.keyLock.With(id, func() {
		rec, ok := l.lookup(id)
		if !ok {
			rec = &models.AttemptRecord{Identity: key.Identity(), Operation: key.Operation()}
			l.mu.Lock()
			l.records[id] = rec
			l.mu.Unlock()
		}
		rec.RecordFailure(now)
		out = rec.Clone()
	})
	return out, nil
}

func (l *InMemoryLedger) Clear(ctx context.Context, key models.AttemptKey) error {
	if err := ctx.Err(); err != nil {
		return storageError(err, "clear")
	}
	id := key.String()
	l.keyLock.With(id, func() {
		l.mu.Lock()
		delete(l.records, id)
		l.mu.Unlock()
	})
	return nil
}

func (l *InMemoryLedger) ApplyLock(ctx context.Context, key models.AttemptKey, until, now time.Time) (*models.AttemptRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, storageError(err, "lock")
	}
	id := key.String()
	var (
		out     *models.AttemptRecord
		applied bool
	)
	l.keyLock.With(id, func() {
		rec, ok := l.lookup(id)
		if !ok {
			return
		}
		applied = rec.Lock(until, now)
		out = rec.Clone()
	})
	return out, applied, nil
}

func (l *InMemoryLedger) CompactExpired(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, storageError(err, "compact")
	}
	l.mu.RLock()
	candidates := make([]string, 0)
	for id := range l.records {
		candidates = append(candidates, id)
	}
	l.mu.RUnlock()

	deleted := 0
	for _, id := range candidates {
		l.keyLock.With(id, func() {
			rec, ok := l.lookup(id)
			if !ok || rec.LockedUntil == nil || !rec.LockedUntil.Before(cutoff) {
				return
			}
			l.mu.Lock()
			delete(l.records, id)
			l.mu.Unlock()
			deleted++
		})
	}
	return deleted, nil
}

// Len reports the number of stored records.
func (l *InMemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
