package nodetable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// record is the on-disk CBOR shape: a self-describing array so the
// format can gain fields later without breaking old files.
type record struct {
	ID   uint16
	Addr LongAddress
}

// FileStore persists the node table as a CBOR-encoded array of records
// at a fixed path, replacing it atomically on every save.
type FileStore struct {
	path string
}

// NewFileStore returns a Store backed by the file at path. path need
// not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (map[uint16]LongAddress, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[uint16]LongAddress), nil
	}
	if err != nil {
		return make(map[uint16]LongAddress), fmt.Errorf("read node table %s: %w", s.path, err)
	}

	var records []record
	if err := cbor.Unmarshal(data, &records); err != nil {
		return make(map[uint16]LongAddress), fmt.Errorf("decode node table %s: %w", s.path, err)
	}

	table := make(map[uint16]LongAddress, len(records))
	for _, r := range records {
		table[r.ID] = r.Addr
	}
	return table, nil
}

func (s *FileStore) Save(table map[uint16]LongAddress) error {
	records := make([]record, 0, len(table))
	for id, addr := range table {
		records = append(records, record{ID: id, Addr: addr})
	}

	data, err := cbor.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode node table: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".nodetable-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp node table file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp node table file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp node table file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace node table file: %w", err)
	}
	return nil
}
