package sqlsafety

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// TenantParamMarker is the positional parameter every query must bind
	// the wedding id to.
	TenantParamMarker = "$1"

	// TenantColumn is the column that scopes every table to one wedding.
	// Requiring the token in the text prevents queries that bind $1 but
	// never reference the column (e.g. SELECT 1 WHERE $1 = $1).
	TenantColumn = "wedding_id"
)

// Rule identifies which validation stage rejected a query.
type Rule string

const (
	RuleSelectOnly         Rule = "select_only"
	RuleSingleStatement    Rule = "single_statement"
	RuleForbiddenKeyword   Rule = "forbidden_keyword"
	RuleTenantParam        Rule = "tenant_parameter"
	RuleTenantColumn       Rule = "tenant_column"
	RuleTableAllowlist     Rule = "table_allowlist"
	RuleParameterInjection Rule = "parameter_injection"
)

// ValidationError reports exactly which rule a query violated. The
// message is suitable for logs and for telling the user to rephrase; it
// never echoes attacker-controlled fragments beyond the offending table
// name.
type ValidationError struct {
	Rule    Rule
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Result is the outcome of validating one piece of SQL text.
type Result struct {
	// CleanedSQL is the fence-stripped, semicolon-normalized text that
	// passed all checks. Empty when Err is set.
	CleanedSQL string
	Err        *ValidationError
}

// Valid reports whether the SQL may be executed.
func (r Result) Valid() bool {
	return r.Err == nil
}

var (
	selectPrefixPattern = regexp.MustCompile(`(?is)^\s*select\b`)

	// Whole-word scan for mutating/DDL/DCL keywords anywhere in the text.
	// Catches stacked-statement payloads (SELECT 1; DROP TABLE x) even
	// though the prefix check only looks at the first keyword.
	forbiddenKeywordPattern = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|create|alter|truncate|grant|revoke|execute|call|merge|replace|load|copy)\b`)

	tenantColumnPattern = regexp.MustCompile(`(?i)\b` + TenantColumn + `\b`)
)

// Validator applies the layered safety policy to SQL text. It holds no
// mutable state: validating the same text twice yields the same result,
// which makes it safe to call from concurrent requests and to fuzz
// standalone without any LLM in the loop.
type Validator struct {
	allowedTables map[string]struct{}
	allowedNames  []string
}

// NewValidator creates a validator that only admits queries over the
// given tables. Names are matched case-insensitively, unqualified.
func NewValidator(allowedTables []string) *Validator {
	allowed := make(map[string]struct{}, len(allowedTables))
	names := make([]string, 0, len(allowedTables))
	for _, t := range allowedTables {
		name := strings.ToLower(strings.TrimSpace(t))
		if name == "" {
			continue
		}
		if _, dup := allowed[name]; dup {
			continue
		}
		allowed[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return &Validator{allowedTables: allowed, allowedNames: names}
}

// AllowedTables returns the table allowlist, sorted.
func (v *Validator) AllowedTables() []string {
	out := make([]string, len(v.allowedNames))
	copy(out, v.allowedNames)
	return out
}

// Validate cleans the raw SQL and applies every stage of the safety
// policy in order, short-circuiting on the first failure:
//
//  1. the statement must begin with SELECT;
//  2. no mutating/DDL keyword anywhere in the text;
//  3. the $1 tenant parameter marker must be present;
//  4. the wedding_id column token must be present;
//  5. structural parse: single SELECT statement, every referenced table
//     on the allowlist — with a regex fallback that still enforces the
//     allowlist when the parser cannot handle the text.
//
// On success the cleaned SQL is returned for execution.
func (v *Validator) Validate(raw string) Result {
	cleaned := Clean(raw)

	if !selectPrefixPattern.MatchString(cleaned) {
		return fail(RuleSelectOnly, "Only SELECT queries are allowed")
	}

	if m := forbiddenKeywordPattern.FindStringSubmatch(cleaned); m != nil {
		return fail(RuleForbiddenKeyword,
			fmt.Sprintf("Query contains disallowed operation %q", strings.ToUpper(m[1])))
	}

	if !strings.Contains(cleaned, TenantParamMarker) {
		return fail(RuleTenantParam, "Query must use $1 to filter by wedding")
	}

	if !tenantColumnPattern.MatchString(cleaned) {
		return fail(RuleTenantColumn, "Query must filter by wedding_id")
	}

	if err := v.checkStructure(cleaned); err != nil {
		return Result{Err: err}
	}

	return Result{CleanedSQL: cleaned}
}

// checkTables verifies every referenced table against the allowlist,
// rejecting on the first miss and naming the offending table.
func (v *Validator) checkTables(tables []string) *ValidationError {
	for _, t := range tables {
		if _, ok := v.allowedTables[t]; !ok {
			return &ValidationError{
				Rule:    RuleTableAllowlist,
				Message: fmt.Sprintf("Table %q is not allowed", t),
			}
		}
	}
	return nil
}

func fail(rule Rule, message string) Result {
	return Result{Err: &ValidationError{Rule: rule, Message: message}}
}
