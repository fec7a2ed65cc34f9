// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset loads the two required input datasets: grant records
// from YAML and publication records from CSV. A dataset that cannot be
// read or fails validation is a fatal startup error; a record with gaps
// (missing names, empty author lists) loads fine and simply never
// produces a candidate downstream.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grant-mapper/pkg/types"
)

// dateLayout is the date format for grant start/end dates.
const dateLayout = "2006-01-02"

// grantDoc mirrors one grant entry in the YAML dataset, with dates as
// strings so parse errors can name the offending grant.
type grantDoc struct {
	Code               string   `yaml:"code"`
	Title              string   `yaml:"title"`
	Description        string   `yaml:"description"`
	LeadInvestigator   string   `yaml:"lead_investigator"`
	OtherInvestigators []string `yaml:"other_investigators"`
	StartDate          string   `yaml:"start_date"`
	EndDate            string   `yaml:"end_date"`
}

// LoadGrants reads a YAML list of grant records. Each grant must carry a
// title and a start date no later than its end date.
func LoadGrants(path string) ([]types.Grant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grants file %s: %w", path, err)
	}

	var docs []grantDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing grants file %s: %w", path, err)
	}

	grants := make([]types.Grant, 0, len(docs))
	for i, doc := range docs {
		label := doc.Code
		if label == "" {
			label = fmt.Sprintf("entry %d", i+1)
		}

		if strings.TrimSpace(doc.Title) == "" {
			return nil, fmt.Errorf("grant %s: missing title", label)
		}

		start, err := time.Parse(dateLayout, doc.StartDate)
		if err != nil {
			return nil, fmt.Errorf("grant %s: invalid start_date %q: %w", label, doc.StartDate, err)
		}
		end, err := time.Parse(dateLayout, doc.EndDate)
		if err != nil {
			return nil, fmt.Errorf("grant %s: invalid end_date %q: %w", label, doc.EndDate, err)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("grant %s: end_date %s before start_date %s", label, doc.EndDate, doc.StartDate)
		}

		others := make([]string, 0, len(doc.OtherInvestigators))
		for _, inv := range doc.OtherInvestigators {
			if inv = strings.TrimSpace(inv); inv != "" {
				others = append(others, inv)
			}
		}

		grants = append(grants, types.Grant{
			Code:               doc.Code,
			Title:              strings.TrimSpace(doc.Title),
			Description:        strings.TrimSpace(doc.Description),
			LeadInvestigator:   strings.TrimSpace(doc.LeadInvestigator),
			OtherInvestigators: others,
			StartDate:          start,
			EndDate:            end,
		})
	}

	return grants, nil
}

// publication CSV column names.
const (
	colTitle   = "title"
	colYear    = "publication_year"
	colAuthors = "authors_list"
	colDOI     = "doi"
)

// LoadPublications reads a CSV of publication records. The header row must
// name the title, publication_year, authors_list, and doi columns (any
// order, extra columns ignored). Author lists are comma-separated display
// names. Years must be 4-digit calendar years.
func LoadPublications(path string) ([]types.Publication, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading publications file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing publications file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("publications file %s is empty", path)
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colTitle, colYear, colAuthors} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("publications file %s: missing column %q", path, required)
		}
	}

	pubs := make([]types.Publication, 0, len(rows)-1)
	for n, row := range rows[1:] {
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		yearText := field(colYear)
		year, err := strconv.Atoi(yearText)
		if err != nil || year < 1000 || year > 9999 {
			return nil, fmt.Errorf("publications file %s: row %d: invalid publication_year %q", path, n+2, yearText)
		}

		pubs = append(pubs, types.Publication{
			Title:   field(colTitle),
			Year:    year,
			Authors: splitAuthors(field(colAuthors)),
			DOI:     field(colDOI),
		})
	}

	return pubs, nil
}

// splitAuthors breaks a comma-separated author list into display names.
func splitAuthors(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(strings.Trim(strings.TrimSpace(p), `"`)); p != "" {
			authors = append(authors, p)
		}
	}
	return authors
}
