package diagnosis

import (
	"github.com/aidh-ms/MedMiner/internal/workflows"
	"github.com/aidh-ms/MedMiner/pkg/naming"
	"github.com/aidh-ms/MedMiner/pkg/pipeline"
)

const instruction = "Given a doctors letter containing none or multiple diagnoses, extract all diagnoses and their relevant information."

// Definition declares the diagnosis extraction workflow.
func Definition() workflows.Definition {
	name := naming.DeriveName("DiagnosisExtractionWorkflow")

	return workflows.Definition{
		Name:   name,
		Domain: true,
		Build: func(rt *workflows.Runtime) (workflows.Workflow, error) {
			logger := rt.Logger.With("workflow", name)

			nodes := []pipeline.Node{
				pipeline.ExtractorNode[Extracted](rt.Model, instruction, Schema(), logger),
				LookupNode(rt.Model, rt.ICD, logger),
				pipeline.StorageNode(rt.Tables, name, Columns(), Row, logger),
			}

			return pipeline.Build(name, nodes, rt.Logger)
		},
	}
}
