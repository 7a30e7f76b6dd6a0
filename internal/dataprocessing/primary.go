package dataprocessing

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tincli/internal/config"
	apperrors "tincli/internal/errors"
	"tincli/pkg/contracts/domain"
)

// LookupKey identifies a person across the primary table and the flag report
type LookupKey struct {
	Name string
	Tin  string
}

// NewLookupKey builds the key from upper-cased, trimmed name and trimmed tin
func NewLookupKey(name, tin string) LookupKey {
	return LookupKey{
		Name: cases.Upper(language.Und).String(strings.TrimSpace(name)),
		Tin:  strings.TrimSpace(tin),
	}
}

// LookupIndex answers whether a (name, tin) pair exists in the primary table
type LookupIndex interface {
	Contains(name, tin string) bool
}

// PrimaryTable is the deduplicated set of source rows. It is immutable once built.
type PrimaryTable struct {
	rows     []domain.PrimaryRow
	rawCount int
	index    map[LookupKey]struct{}
}

// ParsePrimaryRow splits an augmented source line into the fixed schema
func ParsePrimaryRow(rec domain.RawRecord) (domain.PrimaryRow, error) {
	fields := strings.Split(rec.Augmented(), string(config.FieldDelimiter))
	if len(fields) != len(config.PrimaryColumns) {
		return domain.PrimaryRow{}, apperrors.NewSchemaMismatchError(
			rec.SourceFile, rec.LineNumber, len(fields), len(config.PrimaryColumns))
	}
	return domain.PrimaryRow{
		TinType:       fields[0],
		Tin:           fields[1],
		Name:          fields[2],
		AccountNumber: fields[3],
		ErrorCodes:    fields[4],
		TinMatchDate:  fields[5],
	}, nil
}

// BuildPrimaryTable parses every record and removes exact duplicates,
// keeping the first occurrence. The first malformed record aborts the build.
func BuildPrimaryTable(records []domain.RawRecord) (*PrimaryTable, error) {
	table := &PrimaryTable{
		rows:     make([]domain.PrimaryRow, 0, len(records)),
		rawCount: len(records),
		index:    make(map[LookupKey]struct{}, len(records)),
	}

	seen := make(map[domain.PrimaryRow]struct{}, len(records))
	for _, rec := range records {
		row, err := ParsePrimaryRow(rec)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[row]; dup {
			continue
		}
		seen[row] = struct{}{}
		table.rows = append(table.rows, row)
		table.index[NewLookupKey(row.Name, row.Tin)] = struct{}{}
	}

	return table, nil
}

// Rows returns a copy of the deduplicated rows in input order
func (t *PrimaryTable) Rows() []domain.PrimaryRow {
	out := make([]domain.PrimaryRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// RawCount is the number of rows before deduplication
func (t *PrimaryTable) RawCount() int { return t.rawCount }

// Count is the number of rows after deduplication
func (t *PrimaryTable) Count() int { return len(t.rows) }

// DuplicatesRemoved is RawCount minus Count
func (t *PrimaryTable) DuplicatesRemoved() int { return t.rawCount - len(t.rows) }

// Contains reports whether any row matches the normalized (name, tin) pair
func (t *PrimaryTable) Contains(name, tin string) bool {
	_, ok := t.index[NewLookupKey(name, tin)]
	return ok
}
