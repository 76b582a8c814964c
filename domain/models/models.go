package models

// VariableType is the declared statistical type of a data-dictionary variable.
type VariableType string

const (
	TypeEnumerated VariableType = "Enumerated"
	TypeNumeric    VariableType = "Numeric"
	TypeText       VariableType = "Text"
	TypeTemporal   VariableType = "Temporal"
)

type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// SummaryResult is the finalized, read-only statistics of one variable.
type SummaryResult struct {
	System     string       `json:"system,omitempty"`
	Identifier string       `json:"identifier"`
	Table      string       `json:"table"`
	Variable   string       `json:"variable"`
	Type       VariableType `json:"type"`
	Count      int64        `json:"count"`   // non-missing values
	Missing    int64        `json:"missing"` // missing encodings, empty cells, unexpected codes
	Distinct   int          `json:"distinct"`
	TopValues  []ValueCount `json:"top_values,omitempty"`

	Numeric *NumericSummary `json:"numeric,omitempty"`
	Enum    *EnumReport     `json:"enum,omitempty"`
}

type NumericSummary struct {
	Sum     float64  `json:"sum"`
	Mean    *float64 `json:"mean,omitempty"` // nil when no valid values were seen
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Invalid int64    `json:"invalid"`
}

// EnumReport partitions a vocabulary by what was observed in the data.
// Observed and Missed together always cover the declared code set.
type EnumReport struct {
	Counts     map[string]int64 `json:"counts"`
	Observed   map[string]int64 `json:"observed_enums"`
	Missed     []string         `json:"missed_enums"`
	Unexpected map[string]int64 `json:"unexpected_enums"`
}

// TableReport is the schema reconciliation of one summarized table. Duplicates
// lists headers whose variable was already filled by another header of the same row.
type TableReport struct {
	Table        string                `json:"table"`
	Source       string                `json:"source,omitempty"`
	Recognized   []string              `json:"recognized_variables"`
	Unrecognized []string              `json:"unrecognized_variables"`
	Unseen       []string              `json:"unseen_variables"`
	Duplicates   []string              `json:"duplicate_variables"`
	Enums        map[string]EnumReport `json:"enumerations"`
	RowCount     int                   `json:"row_count"`
}

// UnrecognizedTable is a data table that no table definition claimed.
type UnrecognizedTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Coding is a system|code pair, such as the tag stamped on a project's outputs.
type Coding struct {
	System string `json:"system"`
	Code   string `json:"code"`
}

type WorkspaceReport struct {
	RunID              string                 `json:"run_id"`
	Workspace          string                 `json:"workspace"`
	StudyID            string                 `json:"study_id,omitempty"`
	MetaTag            *Coding                `json:"meta_tag,omitempty"`
	RecognizedTables   map[string]TableReport `json:"recognized_tables"`
	UnrecognizedTables []UnrecognizedTable    `json:"unrecognized_tables"`
}

type StudyReport struct {
	StudyID string                     `json:"study_id"`
	Sources []string                   `json:"sources"`
	Tables  map[string][]SummaryResult `json:"tables"`
}
