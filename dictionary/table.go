package dictionary

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/pivolan/ddsummary/domain/models"
	"github.com/pivolan/ddsummary/summary"
)

// Row maps a raw column header to its literal cell value.
type Row map[string]string

// Table is the declared schema of one data table: an ordered list of variables.
type Table struct {
	name      string
	variables []*summary.Variable
	byName    map[string]*summary.Variable
}

// NewTable declares a table. Variable names must already be normalized and unique.
func NewTable(name string, variables ...*summary.Variable) (*Table, error) {
	t := &Table{name: name, byName: make(map[string]*summary.Variable, len(variables))}
	for _, v := range variables {
		if _, dup := t.byName[v.Name()]; dup {
			return nil, errors.Errorf("table %s declares variable %q twice", name, v.Name())
		}
		t.byName[v.Name()] = v
		t.variables = append(t.variables, v)
	}
	return t, nil
}

func (t *Table) Name() string { return t.name }

func (t *Table) Variables() []*summary.Variable { return t.variables }

func (t *Table) Variable(name string) (*summary.Variable, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// TableSummary is the outcome of one pass over a table's rows. The accumulators
// stay queryable so that study roll-ups can merge them.
type TableSummary struct {
	Table   string
	Source  string
	Results []models.SummaryResult
	Report  models.TableReport

	accumulators []*summary.Accumulator
}

func (s *TableSummary) Accumulators() []*summary.Accumulator {
	return s.accumulators
}

// Summarize streams rows through fresh accumulators, one per declared variable,
// and reconciles the columns it saw against the declaration. source names the
// data table the rows came from when it differs from the declared name.
func (t *Table) Summarize(run RunContext, source string, rows []Row) (*TableSummary, error) {
	if t == nil {
		return nil, errors.Wrap(summary.ErrNotConstructed, "summarize table")
	}
	if source == "" {
		source = t.name
	}
	accs := make(map[string]*summary.Accumulator, len(t.variables))
	ordered := make([]*summary.Accumulator, 0, len(t.variables))
	for _, v := range t.variables {
		a := summary.New(v)
		accs[v.Name()] = a
		ordered = append(ordered, a)
	}

	normalized := map[string]string{}
	matched := map[string]bool{}
	unrecognized := map[string]bool{}
	duplicates := map[string]bool{}

	for _, row := range rows {
		headers := make([]string, 0, len(row))
		for h := range row {
			headers = append(headers, h)
		}
		sort.Strings(headers)

		used := make(map[string]bool, len(headers))
		for _, h := range headers {
			key, ok := normalized[h]
			if !ok {
				key = NormalizeHeader(h)
				normalized[h] = key
			}
			acc, declared := accs[key]
			if !declared {
				unrecognized[h] = true
				continue
			}
			if used[key] {
				duplicates[h] = true
				continue
			}
			used[key] = true
			matched[key] = true
			acc.Add(row[h])
		}
	}

	out := &TableSummary{
		Table:        t.name,
		Source:       source,
		Results:      make([]models.SummaryResult, 0, len(ordered)),
		accumulators: ordered,
		Report: models.TableReport{
			Table:        t.name,
			Source:       source,
			Recognized:   []string{},
			Unrecognized: []string{},
			Unseen:       []string{},
			Duplicates:   []string{},
			Enums:        map[string]models.EnumReport{},
			RowCount:     len(rows),
		},
	}
	for _, a := range ordered {
		name := a.Variable().Name()
		if matched[name] {
			out.Report.Recognized = append(out.Report.Recognized, name)
		} else {
			out.Report.Unseen = append(out.Report.Unseen, name)
		}

		res, err := a.Finalize()
		if err != nil {
			return nil, err
		}
		run.Stamp(&res, t.name)
		if res.Enum != nil {
			out.Report.Enums[name] = *res.Enum
		}
		out.Results = append(out.Results, res)
	}
	for h := range unrecognized {
		out.Report.Unrecognized = append(out.Report.Unrecognized, h)
	}
	sort.Strings(out.Report.Unrecognized)
	for h := range duplicates {
		out.Report.Duplicates = append(out.Report.Duplicates, h)
	}
	sort.Strings(out.Report.Duplicates)
	return out, nil
}
