package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/skilltree/pkg/layout"
	"github.com/matzehuels/skilltree/pkg/tree"
)

// DefaultScale converts grid units to points in placement diagrams.
const DefaultScale = 2.0

// Options configures diagram generation.
type Options struct {
	// Detailed adds tier and theme lines to node labels.
	Detailed bool

	// Scale multiplies grid coordinates in [PlacementDOT]. Zero means
	// DefaultScale.
	Scale float64
}

var palette = []string{
	"#fde2e4", "#dbe7ff", "#e2f0cb", "#fff1c1", "#e8dcff",
	"#d4f1f4", "#ffd9c0", "#eaeaea",
}

// themeColors assigns palette colors to themes in sorted order.
func themeColors(themes []string) map[string]string {
	slices.Sort(themes)
	themes = slices.Compact(themes)
	out := make(map[string]string, len(themes))
	i := 0
	for _, th := range themes {
		if th == "" {
			continue
		}
		out[th] = palette[i%len(palette)]
		i++
	}
	return out
}

func header(buf *bytes.Buffer, kind, name string) {
	fmt.Fprintf(buf, "%s %q {\n", kind, name)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
}

func label(id, theme string, tier int, detailed bool) string {
	if !detailed {
		return id
	}
	parts := []string{id, fmt.Sprintf("tier: %d", tier)}
	if theme != "" {
		parts = append(parts, "theme: "+theme)
	}
	return strings.Join(parts, "\n")
}

func nodeAttrs(lbl, color string, root bool) string {
	attrs := []string{fmt.Sprintf("label=%q", lbl)}
	if color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", color))
	}
	if root {
		attrs = append(attrs, "penwidth=2.5")
	}
	return strings.Join(attrs, ", ")
}

// TreeDOT renders a tree as a top-down digraph. Tree edges are solid,
// convergence prerequisites are dashed and unconstrained.
func TreeDOT(t *tree.Tree, opts Options) string {
	nodes := t.Nodes()
	slices.SortFunc(nodes, func(a, b *tree.Node) int { return cmp.Compare(a.ID, b.ID) })
	themes := make([]string, 0, len(nodes))
	for _, n := range nodes {
		themes = append(themes, n.Theme)
	}
	colors := themeColors(themes)

	var buf bytes.Buffer
	header(&buf, "digraph", t.Category)
	buf.WriteString("  rankdir=TB;\n  ranksep=0.5;\n  nodesep=0.3;\n\n")
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, nodeAttrs(label(n.ID, n.Theme, int(n.Tier), opts.Detailed), colors[n.Theme], n.IsRoot))
	}
	buf.WriteString("\n")
	for _, n := range nodes {
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID, c)
		}
	}
	for _, n := range nodes {
		for _, p := range n.Convergence() {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, constraint=false, color=grey40];\n", p, n.ID)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

// PlacementDOT renders placed nodes at their grid coordinates. Positions are
// pinned, so the output is meant for the neato engine.
func PlacementDOT(category string, nodes []layout.PlacedNode, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	themes := make([]string, 0, len(nodes))
	for _, n := range nodes {
		themes = append(themes, n.Theme)
	}
	colors := themeColors(themes)

	var buf bytes.Buffer
	header(&buf, "digraph", category)
	buf.WriteString("  layout=neato;\n  overlap=true;\n  splines=false;\n  node [pin=true];\n\n")
	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s, pos=\"%s,%s!\"];\n", n.ID,
			nodeAttrs(label(n.ID, n.Theme, int(n.Tier), opts.Detailed), colors[n.Theme], n.IsRoot),
			formatCoord(n.X*scale), formatCoord(n.Y*scale))
	}
	buf.WriteString("\n")
	for _, n := range nodes {
		if n.ParentID != "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.ParentID, n.ID)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Engine is a Graphviz layout engine.
type Engine = graphviz.Layout

// Layout engines.
const (
	EngineDot   = graphviz.DOT
	EngineNeato = graphviz.NEATO
)

// RenderSVG renders DOT source with the given engine.
func RenderSVG(dot string, engine Engine) ([]byte, error) {
	out, err := render(dot, engine, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG with the given engine.
func RenderPNG(dot string, engine Engine) ([]byte, error) {
	return render(dot, engine, graphviz.PNG)
}

func render(dot string, engine Engine, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(engine)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag to a responsive viewBox.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
