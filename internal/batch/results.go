// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/grant-mapper/pkg/types"
)

// resultHeader lists the columns of both row stores: the input publication
// fields followed by the four derived match columns.
var resultHeader = []string{
	"title", "publication_year", "authors_list", "doi",
	"Associated Grant", "Grant Code", "Confidence Level", "Reasoning",
}

// rowStore is a row-oriented CSV store shared by the cumulative results
// file and the rate-limit checkpoint file. Rows are only ever appended;
// the header is written once when the file is first created.
type rowStore struct {
	path string
}

// EnsureHeader creates the file with the header row if it does not exist.
func (s rowStore) EnsureHeader() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", s.path, err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(resultHeader); err != nil {
		return fmt.Errorf("writing header to %s: %w", s.path, err)
	}
	w.Flush()
	return w.Error()
}

// Append writes records to the end of the store, establishing the header
// first if the file is new.
func (s rowStore) Append(records []types.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.EnsureHeader(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, rec := range records {
		row := []string{
			rec.Publication.Title,
			strconv.Itoa(rec.Publication.Year),
			strings.Join(rec.Publication.Authors, ", "),
			rec.Publication.DOI,
			rec.GrantTitle,
			rec.GrantCode,
			string(rec.Confidence),
			rec.Reasoning,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row to %s: %w", s.path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// Read returns all records in the store, or nil if the file is absent.
func (s rowStore) Read() ([]types.MatchRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	records := make([]types.MatchRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(resultHeader) {
			return nil, fmt.Errorf("%s: short row with %d columns", s.path, len(row))
		}
		year, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid year %q: %w", s.path, row[1], err)
		}

		var authors []string
		if row[2] != "" {
			for _, a := range strings.Split(row[2], ",") {
				authors = append(authors, strings.TrimSpace(a))
			}
		}

		records = append(records, types.MatchRecord{
			Publication: types.Publication{
				Title:   row[0],
				Year:    year,
				Authors: authors,
				DOI:     row[3],
			},
			GrantTitle: row[4],
			GrantCode:  row[5],
			Confidence: types.Confidence(row[6]),
			Reasoning:  row[7],
		})
	}
	return records, nil
}

// Delete removes the store file. Missing files are not errors.
func (s rowStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", s.path, err)
	}
	return nil
}
