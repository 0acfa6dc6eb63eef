package diagramfile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/flow-toolkit/pkg/diagram"
)

// GenerateDOT converts a diagram to Graphviz DOT format. Positions are
// emitted as pos hints so "neato -n" reproduces the canvas arrangement;
// plain dot ignores them and lays the graph out itself.
func GenerateDOT(g *diagram.Graph, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph flow {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	for _, b := range g.Blocks() {
		label := b.Label
		if label == "" {
			label = string(b.ID)
		}
		cx, cy := b.Pos.X+b.W/2, b.Pos.Y+b.H/2
		sb.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", pos=\"%g,%g\"];\n",
			b.ID, escapeDOT(label), cx, -cy))
	}
	sb.WriteString("\n")

	for _, w := range g.Wires() {
		from, _ := g.Port(w.From)
		to, _ := g.Port(w.To)
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\";\n", from.Block, to.Block))
	}

	sb.WriteString("}\n")

	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
