// Package models holds the request/response shapes shared by the HTTP
// handlers, the MCP tools and the report service.
package models

// ReportRequest is a natural-language report question for one wedding.
type ReportRequest struct {
	Question string `json:"question"`
}

// RerunRequest re-executes SQL the client received from a prior report
// response. The text is treated as untrusted and fully re-validated.
type RerunRequest struct {
	SQL string `json:"sql"`
}

// ReportResult is the normalized outcome of a report query.
// Rows carry only JSON-safe values (no 64-bit integers).
type ReportResult struct {
	Rows     []map[string]any `json:"rows"`
	SQL      string           `json:"sql"`
	Columns  []string         `json:"columns"`
	RowCount int              `json:"row_count"`
}
