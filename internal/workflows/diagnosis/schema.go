// Package diagnosis implements the diagnosis extraction workflow: model
// extraction of diagnosis records, WHO ICD-11 enrichment, and table storage.
package diagnosis

import (
	"strconv"

	"github.com/aidh-ms/MedMiner/pkg/model"
)

// Extracted is the raw diagnosis record captured from the letter text.
type Extracted struct {
	Reference      string `json:"reference"`
	Name           string `json:"name"`
	NameTranslated string `json:"name_translated"`
	Year           int    `json:"year"`
	Month          int    `json:"month"`
	Day            int    `json:"day"`
}

// Diagnosis is the processed record: the extracted attributes plus the
// resolved ICD-11 code and its official title.
type Diagnosis struct {
	Extracted
	ICD11Code  string
	ICD11Title string
}

// Schema declares the extraction target shape in column order.
func Schema() model.Schema {
	return model.Schema{Fields: []model.Field{
		{Name: "reference", Type: model.String, Description: "The diagnosis as it appears in the text."},
		{Name: "name", Type: model.String, Description: "The name of the diagnosis."},
		{Name: "name_translated", Type: model.String, Description: "The name of the diagnosis translated to English."},
		{Name: "year", Type: model.Integer, Description: "The year the diagnosis was made. If no year is given, return -1."},
		{Name: "month", Type: model.Integer, Description: "The month the diagnosis was made. If no month is given, return -1."},
		{Name: "day", Type: model.Integer, Description: "The day the diagnosis was made. If no day is given, return -1."},
	}}
}

// Columns returns the output table header in declared order.
func Columns() []string {
	return []string{
		"reference", "name", "name_translated",
		"year", "month", "day",
		"icd11_code", "icd11_title",
	}
}

// Row shapes one processed diagnosis as a table row matching Columns.
func Row(d Diagnosis) []string {
	return []string{
		d.Reference, d.Name, d.NameTranslated,
		strconv.Itoa(d.Year), strconv.Itoa(d.Month), strconv.Itoa(d.Day),
		d.ICD11Code, d.ICD11Title,
	}
}
