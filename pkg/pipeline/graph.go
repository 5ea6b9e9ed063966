package pipeline

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

// DOT renders the pipeline's data flow as a Graphviz digraph. Seeds and
// stages are nodes; each edge carries the field passed along it, drawn from
// the most recent writer of that field.
func (p *Pipeline) DOT() (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	graphName := strconv.Quote(p.Name)
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr(graphName, "rankdir", "LR"); err != nil {
		return "", err
	}

	writer := make(map[string]string, len(p.Seeds)+len(p.Stages))
	for _, seed := range p.Seeds {
		id := strconv.Quote("seed:" + seed)
		if err := g.AddNode(graphName, id, map[string]string{
			"shape": "ellipse",
			"label": strconv.Quote(seed),
		}); err != nil {
			return "", err
		}
		writer[seed] = id
	}

	for i, stage := range p.Stages {
		id := strconv.Quote("stage:" + stage.Name)
		if err := g.AddNode(graphName, id, map[string]string{
			"shape": "box",
			"label": strconv.Quote(fmt.Sprintf("%d. %s", i+1, stage.Name)),
		}); err != nil {
			return "", err
		}
		for _, in := range stage.Inputs {
			if err := g.AddEdge(writer[in], id, true, map[string]string{"label": strconv.Quote(in)}); err != nil {
				return "", err
			}
		}
		writer[stage.Output] = id
	}

	terminal := p.TerminalField()
	outID := strconv.Quote("output:" + terminal)
	if err := g.AddNode(graphName, outID, map[string]string{
		"shape": "doubleoctagon",
		"label": strconv.Quote(terminal),
	}); err != nil {
		return "", err
	}
	if err := g.AddEdge(writer[terminal], outID, true, nil); err != nil {
		return "", err
	}

	return g.String(), nil
}
