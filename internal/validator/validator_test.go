package validator

import (
	"testing"

	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/dsl"
	"github.com/aretw0/aoflow/pkg/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGraph_Valid(t *testing.T) {
	b := dsl.New()
	b.Add("start").Type(domain.NodeTypeStart).To("loop")
	b.Add("loop").Type(domain.NodeTypeLoop).At(0, 100).Loop("body").To("add")
	b.Add("body").Type(domain.NodeTypeCodeblock).At(0, 200).Code("x = x + 1").LoopEnd("loop")
	b.Add("add").Type(domain.NodeTypeAdd).At(0, 50)
	b.Add("note").Type(domain.NodeTypeAnnotation)

	snap, err := b.Snapshot()
	require.NoError(t, err)

	report := ValidateGraph(snap, nodes.NewRegistry(), "start")
	assert.True(t, report.OK())
	assert.NoError(t, report.Err())
	assert.Empty(t, report.Warnings)
}

func TestValidateGraph_Problems(t *testing.T) {
	snap := domain.NewSnapshot(
		[]domain.Node{
			{ID: "start", Type: domain.NodeTypeStart},
			{ID: "mystery", Type: "teleport"},
			{ID: "orphan", Type: domain.NodeTypePrint},
		},
		[]domain.Edge{
			{ID: "e1", Source: "start", Target: "mystery"},
			{ID: "e2", Source: "start", Target: "ghost"},
		},
	)

	report := ValidateGraph(snap, nodes.NewRegistry(), "start")
	require.False(t, report.OK())
	assert.Contains(t, report.Errors, `edge "e2": unknown target "ghost"`)
	assert.Contains(t, report.Errors, `node "mystery": unknown type "teleport"`)
	assert.Contains(t, report.Warnings, `node "orphan" is not reachable from "start"`)
	assert.ErrorContains(t, report.Err(), "found 2 errors")
}

func TestValidateGraph_MissingRoot(t *testing.T) {
	snap := domain.NewSnapshot([]domain.Node{{ID: "a", Type: domain.NodeTypePrint}}, nil)

	report := ValidateGraph(snap, nodes.NewRegistry(), "start")
	assert.Equal(t, []string{`root node "start" not found`}, report.Errors)
	assert.Empty(t, report.Warnings)
}
