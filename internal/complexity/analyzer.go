//go:build cgo

package complexity

import (
	"context"
	"fmt"
	"os"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
)

// Analyzer computes complexity metrics for source files. An Analyzer owns a
// parser and must not be shared between goroutines.
type Analyzer struct {
	parser *Parser
}

// NewAnalyzer creates a new complexity analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{parser: NewParser()}
}

// AnalyzeFile reads and analyzes a source file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*FileMetrics, error) {
	lang, ok := LanguageFromPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported source file: %s", path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeSource(ctx, path, source, lang)
}

// AnalyzeSource analyzes source code and returns its metrics.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte, lang Language) (*FileMetrics, error) {
	root, err := a.parser.Parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}
	kinds := kindsByLanguage[lang]

	fm := &FileMetrics{
		Path:      path,
		Language:  lang,
		Functions: make([]FunctionMetrics, 0),
	}
	for _, fn := range findNodes(root, kinds.functions) {
		fm.Functions = append(fm.Functions, measure(fn, source, lang, kinds))
	}
	fm.Aggregate()
	return fm, nil
}

func measure(node *sitter.Node, source []byte, lang Language, kinds nodeKinds) FunctionMetrics {
	start := int(node.StartPoint().Row) + 1
	end := int(node.EndPoint().Row) + 1

	return FunctionMetrics{
		Name:       functionName(node, source, lang),
		StartLine:  start,
		EndLine:    end,
		Lines:      end - start + 1,
		Cyclomatic: cyclomatic(node, source, kinds),
		Cognitive:  cognitive(node, source, kinds, 0),
	}
}

func functionName(node *sitter.Node, source []byte, lang Language) string {
	var nameNode *sitter.Node

	switch lang {
	case LangJava:
		nameNode = node.ChildByFieldName("name")
	case LangKotlin:
		if node.Type() == "secondary_constructor" {
			return "constructor"
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child != nil && child.Type() == "simple_identifier" {
				nameNode = child
				break
			}
		}
	}

	if nameNode != nil {
		return nameNode.Content(source)
	}
	return "<anonymous>"
}

// cyclomatic counts decision points + 1.
func cyclomatic(node *sitter.Node, source []byte, kinds nodeKinds) int {
	c := 1
	for _, dn := range findNodes(node, kinds.decisions) {
		if kinds.countsAsDecision(dn, source) {
			c++
		}
	}
	return c
}

// cognitive adds 1 + nesting depth for every decision point.
func cognitive(node *sitter.Node, source []byte, kinds nodeKinds, depth int) int {
	c := 0
	nodeType := node.Type()

	if slices.Contains(kinds.decisions, nodeType) && kinds.countsAsDecision(node, source) {
		c += 1 + depth
	}

	childDepth := depth
	if slices.Contains(kinds.nesting, nodeType) {
		childDepth++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			c += cognitive(child, source, kinds, childDepth)
		}
	}
	return c
}

func findNodes(root *sitter.Node, types []string) []*sitter.Node {
	var result []*sitter.Node

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if slices.Contains(types, node.Type()) {
			result = append(result, node)
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}

	walk(root)
	return result
}

// IsAvailable reports whether complexity analysis is compiled in.
func IsAvailable() bool {
	return true
}
