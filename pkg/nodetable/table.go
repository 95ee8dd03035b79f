package nodetable

import "sync"

// Logger is the minimal diagnostics surface the table needs.
type Logger interface {
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Errorf(string, ...interface{}) {}

// Table is the in-memory node table, backed by a Store and guarded by
// a mutex so a future multi-goroutine caller doesn't silently corrupt
// it.
type Table struct {
	mu    sync.Mutex
	store Store
	data  map[uint16]LongAddress
	log   Logger
}

// Load constructs a Table, loading its initial contents from store. A
// load failure is logged and the table starts empty; it is not fatal.
func Load(store Store, logger Logger) *Table {
	if logger == nil {
		logger = nopLogger{}
	}
	data, err := store.Load()
	if err != nil {
		logger.Errorf("node table load failed, starting empty: %v", err)
		data = make(map[uint16]LongAddress)
	}
	return &Table{store: store, data: data, log: logger}
}

// Lookup returns the long address for nodeID, if known.
func (t *Table) Lookup(nodeID uint16) (LongAddress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	addr, ok := t.data[nodeID]
	return addr, ok
}

// Update records addr for nodeID and persists the full table
// synchronously. A save failure is logged; the in-memory table
// remains authoritative and usable until the next successful save.
func (t *Table) Update(nodeID uint16, addr LongAddress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data[nodeID] = addr

	snapshot := make(map[uint16]LongAddress, len(t.data))
	for id, a := range t.data {
		snapshot[id] = a
	}
	if err := t.store.Save(snapshot); err != nil {
		t.log.Errorf("node table save failed: %v", err)
	}
}
