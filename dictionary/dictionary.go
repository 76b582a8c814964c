package dictionary

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pivolan/ddsummary/domain/models"
	"github.com/pivolan/ddsummary/summary"
)

// tableAliases maps a declared table name onto the data table name read in its
// place. The alternate is only consulted when the declared name itself is absent
// from the data and is not declared in its own right.
var tableAliases = map[string]string{
	"subject": "participant",
}

// Dictionary is the set of table definitions governing one consortium.
type Dictionary struct {
	Name string

	tables []*Table
	byName map[string]*Table
	logger *zap.Logger
}

func New(name string, tables ...*Table) (*Dictionary, error) {
	d := &Dictionary{Name: name, byName: make(map[string]*Table, len(tables)), logger: zap.L()}
	for _, t := range tables {
		if t == nil {
			return nil, errors.Wrapf(summary.ErrNotConstructed, "dictionary %s", name)
		}
		if _, dup := d.byName[t.Name()]; dup {
			return nil, errors.Errorf("dictionary %s declares table %q twice", name, t.Name())
		}
		d.byName[t.Name()] = t
		d.tables = append(d.tables, t)
	}
	return d, nil
}

func (d *Dictionary) WithLogger(l *zap.Logger) *Dictionary {
	if l != nil {
		d.logger = l
	}
	return d
}

func (d *Dictionary) Tables() []*Table { return d.tables }

func (d *Dictionary) Table(name string) (*Table, bool) {
	t, ok := d.byName[name]
	return t, ok
}

// resolve finds the definition serving a data table name, honoring aliases.
func (d *Dictionary) resolve(name string) (*Table, bool) {
	if t, ok := d.byName[name]; ok {
		return t, true
	}
	for declared, alt := range tableAliases {
		if alt != name {
			continue
		}
		if t, ok := d.byName[declared]; ok {
			return t, true
		}
	}
	return nil, false
}

// SummarizeTable summarizes the rows of one named data table. Nil rows replay the
// table with no data, yielding an all-missing summary of every declared variable.
// A name no definition claims is reported back as an unrecognized table.
func (d *Dictionary) SummarizeTable(run RunContext, name string, rows []Row) (*TableSummary, []models.UnrecognizedTable, error) {
	t, ok := d.resolve(name)
	if !ok {
		return nil, []models.UnrecognizedTable{{Name: name, Columns: columnUnion(rows)}}, nil
	}
	s, err := t.Summarize(run, name, rows)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "summarize %s", name)
	}
	return s, []models.UnrecognizedTable{}, nil
}

// Summarize runs every declared table against the supplied data, keyed by data
// table name. Nil data replays every table with zero rows. Declared tables absent
// from the data are skipped. Data tables no definition claims are returned with
// the union of their column headers.
func (d *Dictionary) Summarize(run RunContext, data map[string][]Row) (map[string]*TableSummary, []models.UnrecognizedTable, error) {
	out := make(map[string]*TableSummary, len(d.tables))
	claimed := map[string]bool{}

	for _, t := range d.tables {
		source, rows, found := d.lookup(t.Name(), data)
		if !found {
			d.logger.Debug("table absent from data", zap.String("dictionary", d.Name), zap.String("table", t.Name()))
			continue
		}
		claimed[source] = true
		s, err := t.Summarize(run, source, rows)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "summarize %s", t.Name())
		}
		d.logger.Debug("table summarized",
			zap.String("table", t.Name()),
			zap.String("source", source),
			zap.Int("rows", len(rows)),
			zap.Int("unrecognized", len(s.Report.Unrecognized)),
			zap.Int("unseen", len(s.Report.Unseen)),
		)
		out[t.Name()] = s
	}

	unrecognized := []models.UnrecognizedTable{}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if claimed[name] {
			continue
		}
		unrecognized = append(unrecognized, models.UnrecognizedTable{Name: name, Columns: columnUnion(data[name])})
	}
	if len(unrecognized) > 0 {
		d.logger.Info("unrecognized tables", zap.String("dictionary", d.Name), zap.Int("count", len(unrecognized)))
	}
	return out, unrecognized, nil
}

// lookup finds the rows for a declared table. The literal name wins; the
// table's alternate name is tried once when the literal name is absent. In replay
// mode every table is found with zero rows.
func (d *Dictionary) lookup(table string, data map[string][]Row) (string, []Row, bool) {
	if data == nil {
		return table, nil, true
	}
	if rows, ok := data[table]; ok {
		return table, rows, true
	}
	alt, ok := tableAliases[table]
	if !ok {
		return "", nil, false
	}
	if _, declared := d.byName[alt]; declared {
		return "", nil, false
	}
	if rows, ok := data[alt]; ok {
		return alt, rows, true
	}
	return "", nil, false
}

func columnUnion(rows []Row) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for h := range row {
			seen[h] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for h := range seen {
		cols = append(cols, h)
	}
	sort.Strings(cols)
	return cols
}
