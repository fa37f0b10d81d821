package model

import (
	"fmt"
	"strings"
)

// FieldType enumerates the primitive types a schema field may declare.
type FieldType string

// Primitive field types. List variants declare nested sequences.
const (
	String     FieldType = "string"
	Number     FieldType = "number"
	Integer    FieldType = "integer"
	Boolean    FieldType = "boolean"
	StringList FieldType = "list of strings"
)

// Field is one named, typed member of a target record schema.
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

// Schema declares the target record shape for an extraction call as an
// ordered list of typed, named fields. Field order is preserved when the
// schema is rendered into the instruction and when table headers are derived.
type Schema struct {
	Fields []Field
}

// Names returns the field names in declared order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Render produces the response-format clause appended to an extraction
// instruction. The model must answer with a single JSON object holding a
// "data" array of records matching the declared fields.
func (s Schema) Render() string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object of the form {\"data\": [...]} ")
	b.WriteString("where each element of \"data\" is an object with exactly these fields:\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "- %s (%s): %s\n", f.Name, f.Type, f.Description)
	}
	b.WriteString("Return {\"data\": []} if nothing matches. Do not add fields beyond those listed.")
	return b.String()
}
