package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVLedger is the flat-file trade ledger. The header is written exactly
// once, when the file does not yet exist; appends go to the end of the
// file and never rewrite it. Writes are serialized by a mutex; the file
// itself has no cross-process lock.
type CSVLedger struct {
	path string
	mu   sync.Mutex
}

func NewCSV(path string) *CSVLedger {
	return &CSVLedger{path: path}
}

// Append writes one trade row, creating the file and its header first if
// needed.
func (l *CSVLedger) Append(r Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	_, statErr := os.Stat(l.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("writing ledger header: %w", err)
		}
	}
	if err := w.Write(r.record()); err != nil {
		return fmt.Errorf("writing ledger row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ReadAll returns every row in the ledger in file order. A missing file
// is an empty ledger, not an error.
func (l *CSVLedger) ReadAll() ([]Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = len(Header)

	records, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	var rows []Row
	for i, rec := range records {
		if i == 0 && rec[0] == Header[0] {
			continue // header
		}
		r, err := rowFromRecord(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}
