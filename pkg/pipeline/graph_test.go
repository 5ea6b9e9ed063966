package pipeline

import (
	"testing"

	"github.com/awalterschulze/gographviz"
)

func TestDOTRendersDataFlow(t *testing.T) {
	p := &Pipeline{
		Name:  "evolving",
		Seeds: []string{"topic"},
		Stages: []*Stage{
			{Name: "generate", Inputs: []string{"topic"}, Output: "thesis_list", Instructions: "a"},
			{Name: "humanize", Inputs: []string{"thesis_list"}, Output: "thesis_list", Instructions: "b"},
		},
	}

	dot, err := p.DOT()
	if err != nil {
		t.Fatalf("dot: %v", err)
	}

	ast, err := gographviz.ParseString(dot)
	if err != nil {
		t.Fatalf("output is not valid DOT: %v\n%s", err, dot)
	}
	g := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, g); err != nil {
		t.Fatalf("analyse: %v", err)
	}

	if len(g.Nodes.Nodes) != 4 {
		t.Fatalf("expected seed, two stages and output nodes, got %d", len(g.Nodes.Nodes))
	}
	if len(g.Edges.Edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(g.Edges.Edges))
	}
	if len(g.Edges.SrcToDsts[`"stage:generate"`][`"stage:humanize"`]) != 1 {
		t.Fatalf("overwritten field should flow from its latest writer:\n%s", dot)
	}
	if len(g.Edges.SrcToDsts[`"stage:humanize"`][`"output:thesis_list"`]) != 1 {
		t.Fatalf("output should come from the last writer:\n%s", dot)
	}
}

func TestDOTRejectsInvalidPipeline(t *testing.T) {
	if _, err := (&Pipeline{Name: "empty"}).DOT(); err == nil {
		t.Fatalf("expected validation error")
	}
}
