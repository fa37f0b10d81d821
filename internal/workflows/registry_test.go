package workflows_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aidh-ms/MedMiner/internal/workflows"
)

func definition(name string, domain bool) workflows.Definition {
	return workflows.Definition{
		Name:   name,
		Domain: domain,
		Build: func(_ *workflows.Runtime) (workflows.Workflow, error) {
			return nil, nil
		},
	}
}

func TestRegistry(t *testing.T) {
	reg := workflows.NewRegistry()
	reg.Register("beta", definition("beta", true))
	reg.Register("alpha", definition("alpha", false))
	reg.Register("gamma", definition("gamma", true))

	if reg.Len() != 3 {
		t.Fatalf("Len = %d, want 3", reg.Len())
	}

	if _, ok := reg.Get("beta"); !ok {
		t.Error("Get(beta) not found")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("Get(missing) found")
	}

	if diff := cmp.Diff([]string{"alpha", "beta", "gamma"}, reg.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	var domains []string
	for _, def := range reg.Domains() {
		domains = append(domains, def.Name)
	}
	if diff := cmp.Diff([]string{"beta", "gamma"}, domains); diff != "" {
		t.Errorf("Domains mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	reg := workflows.NewRegistry()
	reg.Register("alpha", definition("alpha", false))
	reg.Register("alpha", definition("alpha", true))

	if reg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", reg.Len())
	}
	def, _ := reg.Get("alpha")
	if !def.Domain {
		t.Error("re-registration did not overwrite the earlier definition")
	}
}

func TestRegistryClear(t *testing.T) {
	reg := workflows.NewRegistry()
	reg.Register("alpha", definition("alpha", false))
	reg.Clear()

	if reg.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", reg.Len())
	}
}
