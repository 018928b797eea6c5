package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meikuraledutech/graphdoc"
	"github.com/meikuraledutech/graphdoc/backend"
	"github.com/meikuraledutech/graphdoc/logging"
	"github.com/meikuraledutech/graphdoc/memory"
)

func main() {
	ctx := context.Background()
	logger := logging.NewConsole(logging.ConsoleParams{Prefix: "example"})

	// Wire up the in-memory substrate behind the Store interface.
	var store graphdoc.Store = memory.New(memory.Options{Immutable: true})

	g, err := graphdoc.New(ctx, store, graphdoc.Options{
		DocID:   "onboarding-form",
		Label:   "Onboarding form",
		Layout:  graphdoc.LayoutNGraph,
		Logger:  logger,
		Backend: backend.NGraph{},
	})
	if err != nil {
		logger.Fatal("create graph", "err", err)
	}

	// ── One action, one commit ────────────────────────────────────────
	steps := []func() error{
		func() error { return g.AddNode(ctx, "q1", graphdoc.Entity{"question": "What is your role?"}) },
		func() error { return g.AddNode(ctx, "q2", graphdoc.Entity{"question": "Preferred language?"}) },
		func() error { return g.AddNode(ctx, "q3", graphdoc.Entity{"question": "Preferred design tool?"}) },
		func() error {
			return g.AddEdge(ctx, graphdoc.EdgeRequest{Source: "q1", Target: "q2", Directed: true, Data: map[string]any{"answer": "Developer"}})
		},
		func() error {
			return g.AddEdge(ctx, graphdoc.EdgeRequest{From: "q1", To: "q3", Directed: true, Data: map[string]any{"answer": "Designer"}})
		},
		func() error { return g.UpdateNode(ctx, "q2", graphdoc.Entity{"type": "select"}) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			logger.Fatal("action", "err", err)
		}
		affected, err := g.Commit(ctx, "")
		if err != nil {
			logger.Fatal("commit", "err", err)
		}
		fmt.Printf("%s %s\n", affected.Change, affected.Kind)
	}

	// ── Integrity: the second action must wait for a commit ───────────
	_ = g.AddNode(ctx, "q4", graphdoc.Entity{"question": "Years of experience?"})
	if err := g.AddNode(ctx, "q5", nil); err != nil {
		fmt.Println("rejected:", err)
	}
	if _, err := g.Commit(ctx, "add experience question"); err != nil {
		logger.Fatal("commit", "err", err)
	}

	// ── Commit history ────────────────────────────────────────────────
	fmt.Println("\ncommits:")
	for _, rec := range g.History() {
		fmt.Println(" ", rec.Message)
	}

	// ── Traversable view ──────────────────────────────────────────────
	view, err := g.ToGraph(ctx)
	if err != nil {
		logger.Fatal("convert", "err", err)
	}
	fmt.Println("\nlinks:")
	printJSON(view.Edges())
	fmt.Println("q1 leads to:", view.(*backend.Graph).Neighbors("q1"))

	doc, err := g.Document(ctx)
	if err != nil {
		logger.Fatal("document", "err", err)
	}
	fmt.Println("\ndocument:")
	printJSON(doc)
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
