// Package bootstrap constructs the workflow registry. Registration is an
// explicit initialization step rather than an import side effect; tests
// build their own registries for isolation.
package bootstrap

import (
	"github.com/aidh-ms/MedMiner/internal/workflows"
	"github.com/aidh-ms/MedMiner/internal/workflows/aggregate"
	"github.com/aidh-ms/MedMiner/internal/workflows/diagnosis"
	"github.com/aidh-ms/MedMiner/internal/workflows/medication"
	"github.com/aidh-ms/MedMiner/internal/workflows/procedure"
	"github.com/aidh-ms/MedMiner/internal/workflows/statement"
)

// Registry builds the registry holding every workflow definition.
func Registry() *workflows.Registry {
	reg := workflows.NewRegistry()

	for _, def := range []workflows.Definition{
		medication.Definition(),
		diagnosis.Definition(),
		procedure.Definition(),
		statement.Definition(),
	} {
		reg.Register(def.Name, def)
	}

	agg := aggregate.Definition(reg)
	reg.Register(agg.Name, agg)

	return reg
}
