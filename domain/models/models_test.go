package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryResultJSONKeepsZeroCounts(t *testing.T) {
	tests := []struct {
		name   string
		result SummaryResult
		keys   []string
	}{
		{"all missing", SummaryResult{Variable: "sex", Type: TypeEnumerated, Missing: 3}, []string{"count", "missing", "distinct"}},
		{"empty table", SummaryResult{Variable: "site", Type: TypeText}, []string{"count", "missing", "distinct"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.result)
			require.NoError(t, err)
			var fields map[string]interface{}
			require.NoError(t, json.Unmarshal(b, &fields))
			for _, k := range tt.keys {
				assert.Contains(t, fields, k)
			}
			assert.Equal(t, float64(0), fields["distinct"])
		})
	}
}

func TestTableReportJSONListsDuplicates(t *testing.T) {
	b, err := json.Marshal(TableReport{Table: "participant", Duplicates: []string{}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"duplicate_variables":[]`)
}
