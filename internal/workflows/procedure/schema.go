// Package procedure implements the procedure extraction workflow: model
// extraction of procedure records, SNOMED CT enrichment via a Snowstorm
// server, and table storage.
package procedure

import (
	"strconv"

	"github.com/aidh-ms/MedMiner/pkg/model"
)

// Extracted is the raw procedure record captured from the letter text.
// SearchTerm is model-proposed and optimized for SNOMED CT lookup.
type Extracted struct {
	Reference      string `json:"reference"`
	Name           string `json:"name"`
	NameTranslated string `json:"name_translated"`
	SearchTerm     string `json:"search_term"`
	Year           int    `json:"year"`
	Month          int    `json:"month"`
	Day            int    `json:"day"`
}

// Procedure is the processed record: the extracted attributes plus the
// resolved SNOMED CT concept ID and its fully specified name.
type Procedure struct {
	Extracted
	SnomedID  string
	SnomedFSN string
}

// Schema declares the extraction target shape in column order.
func Schema() model.Schema {
	return model.Schema{Fields: []model.Field{
		{Name: "reference", Type: model.String, Description: "The procedure as it appears in the text."},
		{Name: "name", Type: model.String, Description: "The name of the procedure."},
		{Name: "name_translated", Type: model.String, Description: "The name of the procedure translated to English."},
		{Name: "search_term", Type: model.String, Description: "A search term that can be used to find the procedure in SNOMED CT."},
		{Name: "year", Type: model.Integer, Description: "The year the procedure was performed. If no year is given, return -1."},
		{Name: "month", Type: model.Integer, Description: "The month the procedure was performed. If no month is given, return -1."},
		{Name: "day", Type: model.Integer, Description: "The day the procedure was performed. If no day is given, return -1."},
	}}
}

// Columns returns the output table header in declared order.
func Columns() []string {
	return []string{
		"reference", "name", "name_translated", "search_term",
		"year", "month", "day",
		"snomed_id", "snomed_fsn",
	}
}

// Row shapes one processed procedure as a table row matching Columns.
func Row(p Procedure) []string {
	return []string{
		p.Reference, p.Name, p.NameTranslated, p.SearchTerm,
		strconv.Itoa(p.Year), strconv.Itoa(p.Month), strconv.Itoa(p.Day),
		p.SnomedID, p.SnomedFSN,
	}
}
