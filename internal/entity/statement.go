package entity

import (
	"fmt"
	"strings"
)

// Binding type names understood by the SQL API
const (
	BindingText          = "TEXT"
	BindingReal          = "REAL"
	BindingTimestampNTZ  = "TIMESTAMP_NTZ"
	StatementSuccessCode = "090001"
)

type StatementBinding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// StatementRequest is a parameterized SQL statement submitted to the SQL API.
// Bindings are keyed by 1-based positional index of the "?" placeholders.
type StatementRequest struct {
	Statement string                      `json:"statement"`
	Timeout   int                         `json:"timeout,omitempty"`
	Database  string                      `json:"database,omitempty"`
	Schema    string                      `json:"schema,omitempty"`
	Warehouse string                      `json:"warehouse,omitempty"`
	Role      string                      `json:"role,omitempty"`
	Bindings  map[string]StatementBinding `json:"bindings,omitempty"`
}

type StatementColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type StatementMetadata struct {
	NumRows int               `json:"numRows"`
	RowType []StatementColumn `json:"rowType"`
}

type StatementResponse struct {
	Code              string            `json:"code"`
	Message           string            `json:"message"`
	SQLState          string            `json:"sqlState"`
	StatementHandle   string            `json:"statementHandle"`
	ResultSetMetadata StatementMetadata `json:"resultSetMetaData"`
	Data              [][]*string       `json:"data"`
}

// Row is one tabular result row with its column names
type Row struct {
	Columns []string
	Values  []*string
}

// Get returns the value of the named column, case-insensitively
func (r Row) Get(column string) (string, bool) {
	for i, name := range r.Columns {
		if strings.EqualFold(name, column) && i < len(r.Values) {
			if r.Values[i] == nil {
				return "", true
			}
			return *r.Values[i], true
		}
	}
	return "", false
}

// IsNull reports whether the named column is present and holds SQL NULL
func (r Row) IsNull(column string) bool {
	for i, name := range r.Columns {
		if strings.EqualFold(name, column) {
			return i >= len(r.Values) || r.Values[i] == nil
		}
	}
	return false
}

// String renders the row the way the warehouse client prints it: Row(COL=value, ...)
func (r Row) String() string {
	parts := make([]string, 0, len(r.Columns))
	for i, name := range r.Columns {
		value := "None"
		if i < len(r.Values) && r.Values[i] != nil {
			value = *r.Values[i]
		}
		parts = append(parts, fmt.Sprintf("%s=%s", strings.ToUpper(name), value))
	}
	return "Row(" + strings.Join(parts, ", ") + ")"
}

// Rows converts the SQL API response into rows
func (r *StatementResponse) Rows() []Row {
	columns := make([]string, 0, len(r.ResultSetMetadata.RowType))
	for _, c := range r.ResultSetMetadata.RowType {
		columns = append(columns, c.Name)
	}

	rows := make([]Row, 0, len(r.Data))
	for _, values := range r.Data {
		rows = append(rows, Row{Columns: columns, Values: values})
	}
	return rows
}
