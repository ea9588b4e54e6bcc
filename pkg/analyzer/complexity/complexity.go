// Package complexity estimates cyclomatic complexity of changed text.
//
// Structured estimation parses the text with tree-sitter and counts
// control-flow constructs. When the text cannot be parsed (an unknown
// language, a diff fragment, or broken syntax) the keyword heuristic is used
// instead. Both strategies implement Estimator; Chain picks between them with
// a single fallible attempt.
package complexity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/panbanda/commitlens/pkg/models"
	"github.com/panbanda/commitlens/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrUnparseable is returned by Structured when the text is not valid source.
var ErrUnparseable = errors.New("text is not parseable source")

// Estimator computes a complexity value for one file's text.
type Estimator interface {
	Estimate(path, text string) (float64, error)
}

// Result is a complexity value together with the strategy that produced it.
type Result struct {
	Value  float64
	Method models.ComplexityMethod
}

// Ensure both strategies implement Estimator.
var (
	_ Estimator = (*Structured)(nil)
	_ Estimator = Keywords{}
)

// Structured counts decision points in a tree-sitter parse of the text.
// It is safe for concurrent use; parsers are pooled.
type Structured struct {
	parsers sync.Pool
}

// NewStructured creates a structured estimator.
func NewStructured() *Structured {
	return &Structured{
		parsers: sync.Pool{New: func() any { return parser.New() }},
	}
}

// Estimate parses text using the grammar selected by path. Any failure to
// obtain a clean tree is reported as ErrUnparseable.
func (s *Structured) Estimate(path, text string) (float64, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return 0, fmt.Errorf("%w: no grammar for %q", ErrUnparseable, path)
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: empty text", ErrUnparseable)
	}

	psr := s.parsers.Get().(*parser.Parser)
	defer s.parsers.Put(psr)

	result, err := psr.Parse(context.Background(), []byte(text), lang, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	defer result.Close()

	if result.HasErrors() {
		return 0, fmt.Errorf("%w: syntax errors in %q", ErrUnparseable, path)
	}

	return float64(1 + CountDecisionPoints(result.Root(), result.Source, lang)), nil
}

// Keywords counts the substrings "if ", "while " and "for ". It never fails.
type Keywords struct{}

// Estimate implements Estimator.
func (Keywords) Estimate(_, text string) (float64, error) {
	n := strings.Count(text, "if ") + strings.Count(text, "while ") + strings.Count(text, "for ")
	return float64(n), nil
}

// Chain tries a primary estimator and falls back to Keywords on any error.
type Chain struct {
	primary Estimator
}

// NewChain returns a Chain over primary. A nil primary means the keyword
// heuristic is always used.
func NewChain(primary Estimator) *Chain {
	return &Chain{primary: primary}
}

// Default returns the standard structured-then-keywords chain.
func Default() *Chain {
	return NewChain(NewStructured())
}

// Estimate never fails.
func (c *Chain) Estimate(path, text string) Result {
	if c.primary != nil {
		if v, err := c.primary.Estimate(path, text); err == nil {
			return Result{Value: v, Method: models.ComplexityStructured}
		}
	}
	v, _ := Keywords{}.Estimate(path, text)
	return Result{Value: v, Method: models.ComplexityHeuristic}
}

// CountDecisionPoints counts control-flow constructs, extra logical operands
// and comprehensions below node.
func CountDecisionPoints(node *sitter.Node, source []byte, lang parser.Language) uint32 {
	kinds := nodeKindsFor(lang)
	var count uint32

	parser.WalkTyped(node, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch {
		case kinds.decisions[nodeType]:
			count++
		case kinds.comprehensions[nodeType]:
			count++
		case kinds.logical[nodeType]:
			// Logical nodes are binary in tree-sitter, so a chain of k operands
			// yields k-1 nodes.
			if isLogicalOperator(n) {
				count++
			}
		}
		return true
	})

	return count
}

// isLogicalOperator reports whether a binary node joins its operands with a
// short-circuit operator.
func isLogicalOperator(node *sitter.Node) bool {
	if op := node.ChildByFieldName("operator"); op != nil {
		return logicalOperators[op.Type()]
	}
	for i := range int(node.ChildCount()) {
		if logicalOperators[node.Child(i).Type()] {
			return true
		}
	}
	return false
}
