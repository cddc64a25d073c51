// Package render groups the output renderers.
//
// The [nodelink] subpackage produces Graphviz DOT, SVG and PNG for trees
// and placements.
//
// [nodelink]: github.com/matzehuels/skilltree/pkg/render/nodelink
package render
