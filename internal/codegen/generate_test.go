package codegen_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/aoflow/internal/codegen"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/aretw0/aoflow/pkg/nodes"
	"github.com/aretw0/aoflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGenerateCode_Print(t *testing.T) {
	snap := (&graph{}).
		node("start", domain.NodeTypeStart, 0, nil).
		node("p1", domain.NodeTypePrint, 0, printData("hi")).
		node("add", domain.NodeTypeAdd, 0, nil).
		edge("start", "p1").edge("p1", "add").
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, "\n\n-- [start:p1]\nprint(\"hi\")\n-- [end:p1]\n", got)
}

func TestGenerateCode_Override(t *testing.T) {
	snap := (&graph{}).node("p1", domain.NodeTypePrint, 0, printData("hi")).snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "p1", map[string]any{"var": "msg.From", "varType": domain.KindVariable})
	require.NoError(t, err)
	assert.Contains(t, got, "print(msg.From)")

	// stored data is untouched
	p1, _ := snap.Node("p1")
	assert.Equal(t, "hi", p1.String("var"))
}

func TestGenerateCode_ConditionalNestsBody(t *testing.T) {
	snap := (&graph{}).
		node("c", domain.NodeTypeConditional, 0, map[string]any{
			"lhs": "count", "lhsType": domain.KindVariable,
			"operator": ">",
			"rhs":      "10", "rhsType": domain.KindText,
		}).
		node("b", domain.NodeTypePrint, 100, printData("big")).
		node("add", domain.NodeTypeAdd, 0, nil).
		edge("c", "b").edge("c", "add").
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "c", nil)
	require.NoError(t, err)
	assert.Equal(t,
		"\n\n-- [start:c]\nif count > 10 then\n    -- [start:b]\n    print(\"big\")\n    -- [end:b]\nend\n-- [end:c]\n",
		got)
}

func TestGenerateCode_EmptyBlockBody(t *testing.T) {
	snap := (&graph{}).
		node("c", domain.NodeTypeConditional, 0, map[string]any{"useAdvanced": true, "advancedCondition": "ready"}).
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "c", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "if ready then\n    "+registry.EmptyBodyComment+"\nend")
}

func TestGenerateCode_HandlerMatchFunctionSpansLines(t *testing.T) {
	snap := (&graph{}).
		node("h", domain.NodeTypeHandler, 0, map[string]any{
			"handlerName": "ping",
			"actionType":  nodes.ActionFunction,
			"actionValue": "function(msg)\nreturn msg.Action == \"Ping\"\nend",
		}).
		node("p1", domain.NodeTypePrint, 100, printData("pong")).
		node("add", domain.NodeTypeAdd, 0, nil).
		edge("h", "p1").edge("h", "add").
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "h", nil)
	require.NoError(t, err)
	assert.Equal(t,
		"\n\n-- [start:h]\nHandlers.add(\"ping\", function(msg)\n    return msg.Action == \"Ping\"\nend, function(msg)\n"+
			"    -- [start:p1]\n    print(\"pong\")\n    -- [end:p1]\nend)\n-- [end:h]\n",
		got)
}

func TestGenerateCode_ChainOrderAndDedupe(t *testing.T) {
	snap := (&graph{}).
		node("a", domain.NodeTypePrint, 0, printData("a")).
		node("b", domain.NodeTypePrint, 0, printData("b")).
		node("c", domain.NodeTypePrint, 0, printData("c")).
		edge("a", "b").edge("b", "c").edge("a", "b").
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "a", nil)
	require.NoError(t, err)
	assertMarkers(t, got)

	ia := strings.Index(got, domain.StartMarker("a"))
	ib := strings.Index(got, domain.StartMarker("b"))
	ic := strings.Index(got, domain.StartMarker("c"))
	assert.Less(t, ia, ib)
	assert.Less(t, ib, ic)
}

func TestGenerateCode_DuplicateBodyEdge(t *testing.T) {
	snap := (&graph{}).
		node("l", domain.NodeTypeLoop, 0, map[string]any{"loopType": nodes.LoopWhile, "condition": "true"}).
		node("b", domain.NodeTypePrint, 0, printData("tick")).
		typedEdge("l", "b", domain.EdgeTypeLoop).
		typedEdge("l", "b", domain.EdgeTypeLoop).
		typedEdge("b", "l", domain.EdgeTypeLoopEnd).
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "l", nil)
	require.NoError(t, err)
	assertMarkers(t, got)
	assert.Equal(t, 1, strings.Count(got, `print("tick")`))
	assert.Contains(t, got, "while true do")
}

func TestGenerateCode_Cycle(t *testing.T) {
	snap := (&graph{}).
		node("a", domain.NodeTypePrint, 0, printData("a")).
		node("b", domain.NodeTypePrint, 0, printData("b")).
		edge("a", "b").edge("b", "a").
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "b", nil)
	require.NoError(t, err)
	assertMarkers(t, got)
	assert.Contains(t, got, domain.StartMarker("a"))
}

func TestGenerateCode_MissingGenerator(t *testing.T) {
	snap := (&graph{}).
		node("m", "mystery", 0, nil).
		node("p", domain.NodeTypePrint, 0, printData("after")).
		edge("m", "p").
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "m", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, domain.WrapFragment("m", domain.NoGeneratorComment)))
	assert.Contains(t, got, `print("after")`)
}

func TestGenerateCode_GeneratorFailures(t *testing.T) {
	reg := nodes.NewRegistry()
	reg.Register(registry.NodeType{ID: "panics", Generate: func(context.Context, *registry.Inputs) (registry.Template, error) {
		panic("kaboom")
	}})
	reg.Register(registry.NodeType{ID: "fails", Generate: func(context.Context, *registry.Inputs) (registry.Template, error) {
		return registry.Template{}, errors.New("bad input")
	}})

	var failed []string
	eng := codegen.New(reg, codegen.WithLifecycleHooks(domain.LifecycleHooks{
		OnGeneratorError: func(_ context.Context, ev *domain.GenerationEvent) {
			failed = append(failed, ev.NodeID)
			var gerr *domain.GeneratorError
			assert.ErrorAs(t, ev.Err, &gerr)
		},
	}))

	snap := (&graph{}).
		node("x", "panics", 0, nil).
		node("y", "fails", 0, nil).
		node("z", domain.NodeTypePrint, 0, printData("still here")).
		edge("x", "y").edge("y", "z").
		snapshot()

	got, err := eng.GenerateCode(context.Background(), snap, "x", nil)
	require.NoError(t, err)
	assertMarkers(t, got)
	assert.Contains(t, got, "-- [error:x]")
	assert.Contains(t, got, "kaboom")
	assert.Contains(t, got, "-- [error:y]")
	assert.Contains(t, got, "bad input")
	assert.Contains(t, got, `print("still here")`)
	// nested nodes are generated before their parent
	assert.Equal(t, []string{"y", "x"}, failed)
}

func TestGenerateCode_UnknownNode(t *testing.T) {
	_, err := newEngine().GenerateCode(context.Background(), domain.NewSnapshot(nil, nil), "ghost", nil)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestGenerateCode_Canceled(t *testing.T) {
	snap := (&graph{}).node("p", domain.NodeTypePrint, 0, printData("x")).snapshot()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine().GenerateCode(ctx, snap, "p", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateCode_EditorConverter(t *testing.T) {
	snap := (&graph{}).
		node("h", domain.NodeTypeHandler, 0, map[string]any{"handlerName": "ping", "blocklyXml": "<xml/>"}).
		snapshot()

	got, err := newEngine().GenerateCode(context.Background(), snap, "h", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "-- [error:h]")

	got, err = newEngine(codegen.WithEditor(editorFunc(func(string) (string, error) {
		return `msg.reply({ Data = "pong" })`, nil
	}))).GenerateCode(context.Background(), snap, "h", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "function(msg)\n    msg.reply({ Data = \"pong\" })\n    "+registry.EmptyBodyComment+"\nend)")
}

func TestGenerateCode_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	snap := (&graph{}).
		node("a", domain.NodeTypePrint, 0, printData("a")).
		node("b", domain.NodeTypePrint, 0, printData("b")).
		edge("a", "b").
		snapshot()

	_, err := newEngine(codegen.WithTracer(tp.Tracer("test"))).GenerateCode(context.Background(), snap, "a", nil)
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, "codegen.node", s.Name())
	}
}

func TestGenerateCode_NodeGeneratedHook(t *testing.T) {
	var events []*domain.GenerationEvent
	eng := newEngine(codegen.WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeGenerated: func(_ context.Context, ev *domain.GenerationEvent) {
			events = append(events, ev)
		},
	}))
	snap := (&graph{}).node("p", domain.NodeTypePrint, 0, printData("x")).snapshot()

	got, err := eng.GenerateCode(context.Background(), snap, "p", nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "p", events[0].NodeID)
	assert.Equal(t, domain.EventNodeGenerated, events[0].Type)
	assert.Equal(t, len(got), events[0].Bytes)
}

type editorFunc func(string) (string, error)

func (f editorFunc) ToLua(markup string) (string, error) { return f(markup) }
