package analysis

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/outreach/internal/batches"
)

// Execute runs the analysis graph for a claimed batch:
// load → generate → finalize, or load → finalize when the contact has no
// messages to analyze.
func Execute(ctx context.Context, rt *Runtime, batch *batches.Batch) (*Result, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil).Set(KeyBatch, *batch)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return nil, err
	}

	return extract[Result](final, KeyResult)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("outreach-analyze")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("load", LoadNode(rt)); err != nil {
		return nil, err
	}
	if err := graph.AddNode("generate", GenerateNode(rt)); err != nil {
		return nil, err
	}
	if err := graph.AddNode("finalize", FinalizeNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddEdge("load", "generate", hasMessages); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("load", "finalize", state.Not(hasMessages)); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("generate", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("load"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func hasMessages(s state.State) bool {
	in, err := extract[Request](s, KeyInput)
	return err == nil && len(in.Messages) > 0
}

func extract[T any](s state.State, key string) (*T, error) {
	val, ok := s.Get(key)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", key)
	}
	v, ok := val.(T)
	if !ok {
		return nil, fmt.Errorf("%s has unexpected type %T", key, val)
	}
	return &v, nil
}
