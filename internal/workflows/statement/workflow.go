// Package statement implements the boolean statement workflow: the model
// labels the patient against a user-supplied statement and the result is
// stored without enrichment.
package statement

import (
	"fmt"
	"strconv"

	"github.com/aidh-ms/MedMiner/internal/workflows"
	"github.com/aidh-ms/MedMiner/pkg/model"
	"github.com/aidh-ms/MedMiner/pkg/naming"
	"github.com/aidh-ms/MedMiner/pkg/pipeline"
)

const instruction = "Given a medical information of a patient in form of a doctor's letter, extract all patients and label them according to the following statement."

// Extracted is the boolean labeling record. The statement domain requires no
// enrichment, so the processed shape is identical.
type Extracted struct {
	Filter      bool   `json:"filter"`
	Information string `json:"information"`
	Reference   string `json:"reference"`
}

// Schema declares the extraction target shape in column order.
func Schema() model.Schema {
	return model.Schema{Fields: []model.Field{
		{Name: "filter", Type: model.Boolean, Description: "A boolean value indicating whether the statement is true (filter=true) or false (filter=false)."},
		{Name: "information", Type: model.String, Description: "The extracted information from the document that supports the filter decision."},
		{Name: "reference", Type: model.String, Description: "The exact text snippet from the document that was used to make the decision."},
	}}
}

// Columns returns the output table header in declared order.
func Columns() []string {
	return []string{"filter", "information", "reference"}
}

// Row shapes one statement record as a table row matching Columns.
func Row(e Extracted) []string {
	return []string{strconv.FormatBool(e.Filter), e.Information, e.Reference}
}

// Definition declares the boolean statement workflow. Building it requires
// a statement on the runtime; the workflow does not participate in the
// aggregate fan-out.
func Definition() workflows.Definition {
	name := naming.DeriveName("BooleanStatementWorkflow")

	return workflows.Definition{
		Name: name,
		Build: func(rt *workflows.Runtime) (workflows.Workflow, error) {
			if rt.Statement == "" {
				return nil, fmt.Errorf("workflow %s requires a statement", name)
			}

			logger := rt.Logger.With("workflow", name)
			prompt := fmt.Sprintf("%s\n\nStatement: %s\n", instruction, rt.Statement)

			nodes := []pipeline.Node{
				pipeline.ExtractorNode[Extracted](rt.Model, prompt, Schema(), logger),
				pipeline.PassthroughNode[Extracted](),
				pipeline.StorageNode(rt.Tables, name, Columns(), Row, logger),
			}

			return pipeline.Build(name, nodes, rt.Logger)
		},
	}
}
