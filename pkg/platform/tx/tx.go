package tx

import (
	"context"
	"database/sql"
	"sync"
)

type ctxKey struct{}

type journalKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Journal records undo steps for in-memory stores so a failed unit of work
// leaves no partial writes behind.
type Journal struct {
	mu   sync.Mutex
	undo []func()
}

// memoryGate keeps in-memory writes of an open unit of work invisible to
// readers outside it. Units hold it exclusively; store reads share it.
var memoryGate sync.RWMutex

// WithJournal starts a journal and stores it in context.
func WithJournal(ctx context.Context) (context.Context, *Journal) {
	j := &Journal{}
	return context.WithValue(ctx, journalKey{}, j), j
}

// Begin waits for exclusive use of the in-memory stores and starts a journal.
// release must be called once the unit has committed or rolled back.
func Begin(ctx context.Context) (txCtx context.Context, j *Journal, release func()) {
	memoryGate.Lock()
	txCtx, j = WithJournal(ctx)
	var once sync.Once
	return txCtx, j, func() { once.Do(memoryGate.Unlock) }
}

// ReadCommitted waits until no unit of work is open and returns the func
// that ends the read. Inside a unit it returns at once so the unit sees its
// own writes.
func ReadCommitted(ctx context.Context) (done func()) {
	if _, inUnit := ctx.Value(journalKey{}).(*Journal); inUnit {
		return func() {}
	}
	memoryGate.RLock()
	return memoryGate.RUnlock
}

// OnRollback registers fn to run if the surrounding unit of work fails.
// Outside a journaled context it is a no-op.
func OnRollback(ctx context.Context, fn func()) {
	j, ok := ctx.Value(journalKey{}).(*Journal)
	if !ok {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undo = append(j.undo, fn)
}

// Rollback runs recorded undo steps in reverse order and clears the journal.
func (j *Journal) Rollback() {
	j.mu.Lock()
	undo := j.undo
	j.undo = nil
	j.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// Len reports how many undo steps are recorded.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.undo)
}
