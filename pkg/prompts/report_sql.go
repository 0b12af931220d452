package prompts

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
)

// ReportSQLSystemPrompt renders the system prompt for SQL generation.
// The rules here are advisory only — the model is told what the safety
// layer will enforce, but the validator remains the security boundary.
func ReportSQLSystemPrompt(catalog *Catalog, maxRows int) string {
	var b strings.Builder

	b.WriteString("You translate questions from wedding planners into a single PostgreSQL SELECT statement.\n\n")
	b.WriteString("Schema:\n\n")

	for _, t := range catalog.Tables {
		fmt.Fprintf(&b, "Table %s (%s; one row per %s):\n",
			t.Name, t.Description, inflection.Singular(strings.ReplaceAll(t.Name, "_", " ")))
		for _, col := range t.Columns {
			if col.Description != "" {
				fmt.Fprintf(&b, "  - %s %s — %s\n", col.Name, col.Type, col.Description)
			} else {
				fmt.Fprintf(&b, "  - %s %s\n", col.Name, col.Type)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Rules:\n")
	b.WriteString("- Output exactly one SELECT statement and nothing else. No commentary, no markdown.\n")
	b.WriteString("- $1 is the wedding id. Every table you touch must be filtered with wedding_id = $1.\n")
	b.WriteString("- $2 is the id of the admin asking. Use it only when the question is about the asker (\"my guests\", \"assigned to me\").\n")
	b.WriteString("- Never write anything other than a query: no INSERT, UPDATE, DELETE, DDL, or function calls that modify state.\n")
	b.WriteString("- Only the tables listed above exist. Do not invent tables or columns.\n")
	fmt.Fprintf(&b, "- Append LIMIT %d to every query.\n", maxRows)
	b.WriteString("- If the question cannot be answered from this schema, return: SELECT 'unanswerable' AS answer FROM families WHERE wedding_id = $1 LIMIT 0\n")

	return b.String()
}
