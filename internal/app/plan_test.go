package app

import (
	"testing"

	"github.com/felixgeelhaar/actor/internal/domain/definition"
	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planDefinition() *definition.Definition {
	return &definition.Definition{
		Name: "demo",
		Steps: []definition.Step{
			{Key: "mkdir.results", Properties: map[string]interface{}{"path": "results"}},
			{Key: "note.intro"},
			{Key: "bogus.step"},
		},
	}
}

func TestPlan_Selection(t *testing.T) {
	t.Parallel()

	reg := pipeline.NewRegistry(library.Builtin())
	planned, err := Plan(planDefinition(), reg, PlanOptions{Steps: "mkdir.results,-note.intro,bogus.step"})
	require.NoError(t, err)

	assert.Equal(t, []PlannedStep{
		{Key: "mkdir.results", Tag: "mkdir", Library: library.Name, Selected: true, Known: true},
		{Key: "note.intro", Tag: "note", Library: library.Name, Selected: true, Known: true, Dry: true},
		{Key: "bogus.step", Tag: "bogus", Selected: true},
	}, planned)
}

func TestPlan_DefaultsAndStartAt(t *testing.T) {
	t.Parallel()

	reg := pipeline.NewRegistry(library.Builtin())
	def := planDefinition()
	def.StepList = "mkdir.results,note.intro"

	planned, err := Plan(def, reg, PlanOptions{StartAt: "note.intro"})
	require.NoError(t, err)
	require.Len(t, planned, 3)
	assert.True(t, planned[0].Dry)
	assert.False(t, planned[1].Dry)
	assert.False(t, planned[2].Selected)

	planned, err = Plan(def, reg, PlanOptions{Dry: true})
	require.NoError(t, err)
	assert.True(t, planned[0].Dry)
	assert.True(t, planned[1].Dry)
}
