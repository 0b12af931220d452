package sqlsafety

import (
	"regexp"
	"strings"

	"github.com/auxten/postgresql-parser/pkg/sql/parser"
	"github.com/auxten/postgresql-parser/pkg/sql/sem/tree"
	"github.com/auxten/postgresql-parser/pkg/walk"
)

// paramMarkerPattern matches positional parameters ($1, $2, ...). Before
// the structural parse they are substituted with a harmless string
// literal so the grammar accepts the text unchanged otherwise.
var paramMarkerPattern = regexp.MustCompile(`\$\d+`)

const neutralParamLiteral = "'00000000-0000-0000-0000-000000000000'"

// fromJoinPattern extracts the identifier following FROM or JOIN. Used
// by the fallback table scan when the structural parser cannot handle
// the text; deliberately permissive about syntax, never about tables.
var fromJoinPattern = regexp.MustCompile(`(?i)\b(?:from|join)\s+("?[a-zA-Z_][a-zA-Z0-9_$]*"?(?:\."?[a-zA-Z_][a-zA-Z0-9_$]*"?)*)`)

// checkStructure is the structural validation stage. It enforces, in
// order:
//
//   - exactly one statement (a quote-aware semicolon scan guards both
//     the parser path and the fallback path);
//   - every parsed top-level statement is a SELECT, which covers stacked
//     statements built purely from keywords the denylist does not name;
//   - every referenced table is on the allowlist.
//
// When the parser itself fails, the table check degrades to a FROM/JOIN
// regex scan instead of being skipped: parser fragility must never
// disable table allowlisting.
func (v *Validator) checkStructure(cleaned string) *ValidationError {
	if hasSemicolonOutsideStrings(cleaned) {
		return &ValidationError{
			Rule:    RuleSingleStatement,
			Message: "Only a single SQL statement is allowed",
		}
	}

	stmts, parseErr := parseStatements(paramMarkerPattern.ReplaceAllString(cleaned, neutralParamLiteral))
	if parseErr != nil {
		return v.checkTables(extractTablesHeuristic(cleaned))
	}

	for _, stmt := range stmts {
		if _, ok := stmt.AST.(*tree.Select); !ok {
			return &ValidationError{
				Rule:    RuleSelectOnly,
				Message: "Only SELECT queries are allowed",
			}
		}
	}

	tables := collectTables(stmts)
	if len(tables) == 0 {
		// The walker found nothing but the text mentions FROM/JOIN:
		// fall back to the heuristic scan rather than trusting silence.
		tables = extractTablesHeuristic(cleaned)
	}
	return v.checkTables(tables)
}

// parseStatements wraps the parser so that a grammar panic on exotic
// input is reported as an ordinary parse failure.
func parseStatements(sqlText string) (stmts parser.Statements, err error) {
	defer func() {
		if r := recover(); r != nil {
			stmts = nil
			err = errPanicParse
		}
	}()
	return parser.Parse(sqlText)
}

var errPanicParse = &ValidationError{Rule: RuleSelectOnly, Message: "parser panic"}

// collectTables walks the statement tree and gathers every referenced
// table name, lowercased and unqualified.
func collectTables(stmts parser.Statements) []string {
	seen := make(map[string]struct{})
	var tables []string

	w := &walk.AstWalker{
		Fn: func(ctx interface{}, node interface{}) (stop bool) {
			if name, ok := node.(*tree.TableName); ok {
				t := strings.ToLower(name.Table())
				if _, dup := seen[t]; !dup && t != "" {
					seen[t] = struct{}{}
					tables = append(tables, t)
				}
			}
			return false
		},
	}
	_, _ = w.Walk(stmts, nil)

	return tables
}

// extractTablesHeuristic scans raw SQL for FROM/JOIN clauses and returns
// the identifiers that follow, lowercased with schema qualifiers and
// quoting stripped. Subqueries do not match (the pattern requires an
// identifier, not an opening parenthesis).
func extractTablesHeuristic(sqlText string) []string {
	seen := make(map[string]struct{})
	var tables []string

	for _, m := range fromJoinPattern.FindAllStringSubmatch(sqlText, -1) {
		ident := m[1]
		if i := strings.LastIndex(ident, "."); i >= 0 {
			ident = ident[i+1:]
		}
		ident = strings.ToLower(strings.Trim(ident, `"`))
		if ident == "" {
			continue
		}
		if _, dup := seen[ident]; dup {
			continue
		}
		seen[ident] = struct{}{}
		tables = append(tables, ident)
	}

	return tables
}
