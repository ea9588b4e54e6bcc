package complexity

import "github.com/panbanda/commitlens/pkg/parser"

var logicalOperators = map[string]bool{
	"&&":  true,
	"||":  true,
	"??":  true,
	"and": true,
	"or":  true,
}

// nodeKinds groups the AST node types that add to complexity for a language.
type nodeKinds struct {
	decisions      map[string]bool
	logical        map[string]bool
	comprehensions map[string]bool
}

var kindsByLanguage = map[parser.Language]nodeKinds{
	parser.LangPython: {
		decisions: makeSet(
			"if_statement", "elif_clause",
			"for_statement", "while_statement",
			"except_clause", "except_group_clause",
		),
		logical:        makeSet("boolean_operator"),
		comprehensions: makeSet("list_comprehension", "set_comprehension", "generator_expression"),
	},
	parser.LangGo: {
		decisions: makeSet(
			"if_statement", "for_statement",
			"expression_case", "type_case", "communication_case",
		),
		logical: makeSet("binary_expression"),
	},
	parser.LangJavaScript: jsKinds,
	parser.LangTypeScript: jsKinds,
	parser.LangTSX:        jsKinds,
	parser.LangJava: {
		decisions: makeSet(
			"if_statement", "for_statement", "enhanced_for_statement",
			"while_statement", "do_statement",
			"switch_label", "catch_clause", "ternary_expression",
		),
		logical: makeSet("binary_expression"),
	},
	parser.LangC:   cKinds,
	parser.LangCPP: cKinds,
	parser.LangCSharp: {
		decisions: makeSet(
			"if_statement", "for_statement", "foreach_statement",
			"while_statement", "do_statement",
			"switch_section", "catch_clause", "conditional_expression",
		),
		logical:        makeSet("binary_expression"),
		comprehensions: makeSet("query_expression"),
	},
	parser.LangRust: {
		decisions: makeSet(
			"if_expression", "match_arm",
			"for_expression", "while_expression", "loop_expression",
		),
		logical: makeSet("binary_expression"),
	},
	parser.LangRuby: {
		decisions: makeSet(
			"if", "elsif", "unless", "if_modifier", "unless_modifier",
			"while", "until", "for", "when", "rescue", "conditional",
		),
		logical: makeSet("binary"),
	},
	parser.LangPHP: {
		decisions: makeSet(
			"if_statement", "else_if_clause",
			"for_statement", "foreach_statement", "while_statement", "do_statement",
			"case_statement", "catch_clause", "conditional_expression",
		),
		logical: makeSet("binary_expression"),
	},
}

var jsKinds = nodeKinds{
	decisions: makeSet(
		"if_statement", "for_statement", "for_in_statement",
		"while_statement", "do_statement",
		"switch_case", "catch_clause", "ternary_expression",
	),
	logical: makeSet("binary_expression"),
}

var cKinds = nodeKinds{
	decisions: makeSet(
		"if_statement", "for_statement", "for_range_loop",
		"while_statement", "do_statement",
		"case_statement", "catch_clause", "conditional_expression",
	),
	logical: makeSet("binary_expression"),
}

func nodeKindsFor(lang parser.Language) nodeKinds {
	return kindsByLanguage[lang]
}

// makeSet converts a list to a map for O(1) lookups.
func makeSet(items ...string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
