// Append-only record of processed opportunities, keyed by canonical link.
// The file is opened, read or appended, and closed per operation so a crash
// mid-run always leaves it readable. Single-writer: one engine instance.

package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobpilot/internal/jobs"
)

const timeLayout = "2006-01-02 15:04:05"

var header = []string{"date", "platform", "title", "company", "location", "link", "status"}

// Record is one ledger entry. Corrections are new rows, never updates.
type Record struct {
	Timestamp time.Time
	Platform  jobs.Platform
	Title     string
	Company   string
	Location  string
	Link      string
	Status    string
}

type Ledger struct {
	path string
}

// Open ensures the CSV file exists with its header row and returns a handle.
func Open(path string) (*Ledger, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating ledger file: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing ledger header: %w", err)
		}
		w.Flush()
		if err := f.Close(); err != nil {
			return nil, err
		}
	}
	return &Ledger{path: path}, nil
}

// HasRecord reports whether any row exists for the exact canonical link.
// Any prior record, regardless of status, marks the link as handled.
func (l *Ledger) HasRecord(link string) (bool, error) {
	rows, err := l.readAll()
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.Link == link {
			return true, nil
		}
	}
	return false, nil
}

// Append writes one record. This is the ledger's only mutation.
func (l *Ledger) Append(rec Record) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening ledger for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	err = w.Write([]string{
		rec.Timestamp.Format(timeLayout),
		string(rec.Platform),
		rec.Title,
		rec.Company,
		rec.Location,
		rec.Link,
		rec.Status,
	})
	if err != nil {
		return fmt.Errorf("appending ledger row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// CountToday counts rows from the local calendar date whose status contains
// statusPart. Used to resume the daily application quota after a restart.
func (l *Ledger) CountToday(statusPart string) (int, error) {
	rows, err := l.readAll()
	if err != nil {
		return 0, err
	}
	today := time.Now().Format("2006-01-02")
	count := 0
	for _, row := range rows {
		if strings.HasPrefix(row.Date, today) && strings.Contains(row.Status, statusPart) {
			count++
		}
	}
	return count, nil
}

type row struct {
	Date   string
	Link   string
	Status string
}

func (l *Ledger) readAll() ([]row, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate rows from older column sets
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	rows := make([]row, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) < 7 {
			continue
		}
		rows = append(rows, row{Date: rec[0], Link: rec[5], Status: rec[6]})
	}
	return rows, nil
}
