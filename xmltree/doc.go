// Package xmltree builds and renders the element trees behind every feed format.
//
// This package is organized into:
// - node.go: Element and CDATA node types
// - build.go: generic value grammar (attributes, text, children, content)
// - render.go: compact and indented serialization with proper escaping
//
// Serialization is done manually so element order, CDATA blocks and the
// declaration line stay under precise control.
package xmltree
