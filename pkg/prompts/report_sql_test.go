package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err)

	names := catalog.TableNames()
	assert.Equal(t, []string{
		"families",
		"family_members",
		"seating_tables",
		"wedding_admins",
		"gifts",
	}, names)

	// Every table must carry the tenant column, or a generated query
	// over it could never pass validation.
	for _, table := range catalog.Tables {
		found := false
		for _, col := range table.Columns {
			if col.Name == "wedding_id" {
				found = true
				break
			}
		}
		assert.True(t, found, "table %s missing wedding_id column", table.Name)
	}
}

func TestReportSQLSystemPrompt(t *testing.T) {
	catalog, err := LoadCatalog()
	require.NoError(t, err)

	prompt := ReportSQLSystemPrompt(catalog, 1000)

	assert.Contains(t, prompt, "wedding_id = $1")
	assert.Contains(t, prompt, "$2 is the id of the admin")
	assert.Contains(t, prompt, "LIMIT 1000")
	assert.Contains(t, prompt, "one row per family member")

	for _, name := range catalog.TableNames() {
		assert.Contains(t, prompt, "Table "+name+" (")
	}

	// The prompt must not promise capabilities the validator rejects.
	assert.NotContains(t, strings.ToLower(prompt), "you may modify")
}
