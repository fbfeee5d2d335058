//go:build cgo

package complexity

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/kotlin"
)

// Parser wraps a tree-sitter parser. It is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new tree-sitter parser.
func NewParser() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Parse parses source code and returns the AST root node.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*sitter.Node, error) {
	tsLang, err := grammar(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree.RootNode(), nil
}

func grammar(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangKotlin:
		return kotlin.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// nodeKinds lists the grammar node types the metrics are computed from.
type nodeKinds struct {
	functions []string
	decisions []string
	nesting   []string
	// boolean binary operators that count as a decision
	logical map[string]bool
}

var kindsByLanguage = map[Language]nodeKinds{
	LangKotlin: {
		functions: []string{"function_declaration", "secondary_constructor", "anonymous_function", "lambda_literal"},
		decisions: []string{
			"if_expression",
			"when_entry",
			"for_statement",
			"while_statement",
			"do_while_statement",
			"catch_block",
			"conjunction_expression", // &&
			"disjunction_expression", // ||
			"elvis_expression",       // ?:
		},
		nesting: []string{
			"if_expression",
			"when_expression",
			"for_statement",
			"while_statement",
			"do_while_statement",
			"try_expression",
			"lambda_literal",
			"anonymous_function",
		},
	},
	LangJava: {
		functions: []string{"method_declaration", "constructor_declaration", "lambda_expression"},
		decisions: []string{
			"if_statement",
			"for_statement",
			"enhanced_for_statement",
			"while_statement",
			"do_statement",
			"switch_block_statement_group",
			"switch_rule",
			"catch_clause",
			"ternary_expression",
			"binary_expression",
		},
		nesting: []string{
			"if_statement",
			"for_statement",
			"enhanced_for_statement",
			"while_statement",
			"do_statement",
			"switch_expression",
			"try_statement",
			"lambda_expression",
		},
		logical: map[string]bool{"&&": true, "||": true},
	},
}

// countsAsDecision filters binary expressions down to && and ||.
func (k nodeKinds) countsAsDecision(node *sitter.Node, source []byte) bool {
	if node.Type() != "binary_expression" {
		return true
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && k.logical[child.Content(source)] {
			return true
		}
	}
	return false
}
