package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Slots is a keyed idempotency store: date × slot -> done. It generalizes a
// single-topic "already ran today" sentinel file so any daily task (posting,
// summaries) can reuse the same append-only persistence as the ledger.
type Slots struct {
	path string
}

func OpenSlots(path string) (*Slots, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating slots directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating slots file: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write([]string{"date", "slot"}); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := f.Close(); err != nil {
			return nil, err
		}
	}
	return &Slots{path: path}, nil
}

// IsDone reports whether slot was already marked for date (YYYY-MM-DD).
func (s *Slots) IsDone(date, slot string) (bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return false, fmt.Errorf("opening slots: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return false, fmt.Errorf("reading slots: %w", err)
	}
	for i, rec := range records {
		if i == 0 || len(rec) < 2 {
			continue
		}
		if rec[0] == date && rec[1] == slot {
			return true, nil
		}
	}
	return false, nil
}

// MarkDone records slot as done for date. Marking twice is harmless.
func (s *Slots) MarkDone(date, slot string) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening slots for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{date, slot}); err != nil {
		return fmt.Errorf("appending slot: %w", err)
	}
	w.Flush()
	return w.Error()
}
