// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the domain records and configuration shared across
// the grant-mapper pipeline stages.
package types

import "time"

// Grant holds one research grant record as loaded from the grants dataset.
type Grant struct {
	// Code is the grant identifier (project code).
	Code string `json:"code" yaml:"code"`

	// Title is the grant title.
	Title string `json:"title" yaml:"title"`

	// Description is an optional free-text project description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// LeadInvestigator is the preferred full name of the lead investigator.
	LeadInvestigator string `json:"lead_investigator" yaml:"lead_investigator"`

	// OtherInvestigators lists co-investigator names in source order.
	OtherInvestigators []string `json:"other_investigators,omitempty" yaml:"other_investigators,omitempty"`

	// StartDate is the grant start date.
	StartDate time.Time `json:"start_date" yaml:"start_date"`

	// EndDate is the grant end date. Never before StartDate.
	EndDate time.Time `json:"end_date" yaml:"end_date"`
}

// Investigators returns the lead investigator followed by the other
// investigators, skipping empty names. A grant with no investigators is
// not matchable.
func (g *Grant) Investigators() []string {
	names := make([]string, 0, 1+len(g.OtherInvestigators))
	if g.LeadInvestigator != "" {
		names = append(names, g.LeadInvestigator)
	}
	for _, n := range g.OtherInvestigators {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Publication holds one publication record as loaded from the publications
// dataset.
type Publication struct {
	// Title is the publication title.
	Title string `json:"title" yaml:"title"`

	// Year is the 4-digit publication year.
	Year int `json:"year" yaml:"year"`

	// Authors lists author display names in source order. May be empty,
	// in which case the publication can never match a grant.
	Authors []string `json:"authors" yaml:"authors"`

	// DOI is the publication DOI, if known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}
