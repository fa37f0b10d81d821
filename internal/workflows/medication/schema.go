// Package medication implements the medication extraction workflow:
// model extraction of medication records from a letter, RxNav enrichment
// with RxNorm identifiers and ATC codes, and table storage.
package medication

import (
	"strconv"
	"strings"

	"github.com/aidh-ms/MedMiner/pkg/model"
)

// Extracted is the raw medication record captured from the letter text.
// Produced only by the extractor; never mutated afterward.
type Extracted struct {
	Reference        string  `json:"reference"`
	Name             string  `json:"name"`
	NameTranslated   string  `json:"name_translated"`
	ActiveIngredient string  `json:"active_ingredient"`
	Dose             float64 `json:"dose"`
	Unit             string  `json:"unit"`
	Route            string  `json:"route"`
	Frequency        string  `json:"frequency"`
	FrequencyCode    string  `json:"frequency_code"`
}

// Medication is the processed record: the extracted attributes plus the
// resolved RxNorm identifier and ATC classification codes.
type Medication struct {
	Extracted
	RxCUI    string
	ATCCodes []string
}

// Schema declares the extraction target shape in column order.
func Schema() model.Schema {
	return model.Schema{Fields: []model.Field{
		{Name: "reference", Type: model.String, Description: "The medication as it appears in the text with all details (e.g. dosage, unit, frequency)."},
		{Name: "name", Type: model.String, Description: "The name of the medication (brand name or generic name)."},
		{Name: "name_translated", Type: model.String, Description: "The name of the medication translated to English without any additional details."},
		{Name: "active_ingredient", Type: model.String, Description: "The active ingredient of the medication."},
		{Name: "dose", Type: model.Number, Description: "The numeric value of the dose. If no dose is given, return -1."},
		{Name: "unit", Type: model.String, Description: "The unit of the dose (e.g. mg, ml). If no unit is given, return an empty string."},
		{Name: "route", Type: model.String, Description: "The route of administration (e.g. oral, intravenous). If no route is given, return an empty string."},
		{Name: "frequency", Type: model.String, Description: "The frequency of the medication (e.g. 1-0-1-0, as needed). If no frequency is given, empty string."},
		{Name: "frequency_code", Type: model.String, Description: frequencyCodeDescription},
	}}
}

const frequencyCodeDescription = `The frequency code of the medication (e.g. BID, Q8H). Use the following codes:
* Q<int:hours>H: Every <int> hours (e.g. Q8H: Every 8 hours)
* Q<int:days>D: Every <int> days (e.g. Q1D: Every 1 day)
* Q<int:weeks>W: Every <int> weeks (e.g. Q1W: Every 1 week)
* BID: Twice a day (e.g. 1-0-1-0)
* TID: Three times a day (e.g. 1-1-1-0)
* QID: Four times a day (e.g. 1-1-1-1)
* QD: Once a day (used for medications that are taken once a day, e.g. 0-1-0 and doesn't fit AM/PM)
* AM: In the morning (1-0-0-0)
* PM: In the evening (0-0-1-0)
* PRN: As needed
* NaF: Not a frequency (e.g. for medications that are not taken regularly)`

// Columns returns the output table header in declared order.
func Columns() []string {
	return []string{
		"reference", "name", "name_translated", "active_ingredient",
		"dose", "unit", "route", "frequency", "frequency_code",
		"rxcui", "atc_codes",
	}
}

// Row shapes one processed medication as a table row matching Columns.
func Row(m Medication) []string {
	return []string{
		m.Reference, m.Name, m.NameTranslated, m.ActiveIngredient,
		strconv.FormatFloat(m.Dose, 'f', -1, 64), m.Unit, m.Route,
		m.Frequency, m.FrequencyCode,
		m.RxCUI, strings.Join(m.ATCCodes, "|"),
	}
}
