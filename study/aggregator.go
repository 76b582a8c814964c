// Package study rolls per-source table summaries up into one cumulative result
// per study.
package study

import (
	"sort"
	"strings"
	"sync"

	"github.com/pivolan/go_utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pivolan/ddsummary/dictionary"
	"github.com/pivolan/ddsummary/domain/models"
	"github.com/pivolan/ddsummary/summary"
)

var (
	ErrInvalidStudyID  = errors.New("invalid study identifier")
	ErrDuplicateSource = errors.New("source already committed to study")
	ErrUnknownStudy    = errors.New("study has no committed sources")
)

// invalidStudyIDs are placeholders workspaces carry before registration completes.
var invalidStudyIDs = []string{"", "TBD", "Registration Pending"}

// ValidStudyID reports whether id names a registered study.
func ValidStudyID(id string) bool {
	return !go_utils.InArray(strings.TrimSpace(id), invalidStudyIDs)
}

type rollup struct {
	mu      sync.Mutex
	sources map[string]bool
	tables  map[string]*tableRollup
}

type tableRollup struct {
	order []string
	vars  map[string]*summary.Accumulator
}

// Aggregator merges table summaries from many sources into per-study roll-ups.
// Commits to different studies proceed in parallel; commits to one study are
// serialized.
type Aggregator struct {
	logger *zap.Logger

	mu      sync.Mutex
	studies map[string]*rollup
}

func New(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger, studies: map[string]*rollup{}}
}

func (a *Aggregator) study(id string, create bool) *rollup {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.studies[id]
	if !ok && create {
		r = &rollup{sources: map[string]bool{}, tables: map[string]*tableRollup{}}
		a.studies[id] = r
	}
	return r
}

// Commit folds one source's table summaries into the study. The first accumulator
// seen for a variable is adopted as a copy; later ones are merged into it. A commit
// is all or nothing: on a merge contract violation the study is left unchanged.
func (a *Aggregator) Commit(studyID, source string, summaries map[string]*dictionary.TableSummary) error {
	if !ValidStudyID(studyID) {
		return errors.Wrapf(ErrInvalidStudyID, "%q from %s", studyID, source)
	}
	r := a.study(studyID, true)
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sources[source] {
		return errors.Wrapf(ErrDuplicateSource, "%s in %s", source, studyID)
	}

	type pending struct {
		table, variable string
		acc             *summary.Accumulator
	}
	var staged []pending

	tables := make([]string, 0, len(summaries))
	for name := range summaries {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	for _, table := range tables {
		s := summaries[table]
		if s == nil {
			return errors.Wrapf(summary.ErrNotConstructed, "table %s from %s", table, source)
		}
		existing := r.tables[table]
		for _, acc := range s.Accumulators() {
			name := acc.Variable().Name()
			var current *summary.Accumulator
			if existing != nil {
				current = existing.vars[name]
			}
			if current == nil {
				staged = append(staged, pending{table, name, acc.Clone()})
				continue
			}
			next := current.Clone()
			if err := next.Merge(acc); err != nil {
				return errors.Wrapf(err, "merge %s.%s from %s into %s", table, name, source, studyID)
			}
			staged = append(staged, pending{table, name, next})
		}
	}

	for _, p := range staged {
		t := r.tables[p.table]
		if t == nil {
			t = &tableRollup{vars: map[string]*summary.Accumulator{}}
			r.tables[p.table] = t
		}
		if _, ok := t.vars[p.variable]; !ok {
			t.order = append(t.order, p.variable)
		}
		t.vars[p.variable] = p.acc
	}
	r.sources[source] = true

	a.logger.Debug("source committed",
		zap.String("study", studyID),
		zap.String("source", source),
		zap.Int("tables", len(tables)),
		zap.Int("sources", len(r.sources)),
	)
	return nil
}

// Studies lists every study with at least one committed source.
func (a *Aggregator) Studies() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.studies))
	for id := range a.studies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a *Aggregator) Sources(studyID string) []string {
	r := a.study(studyID, false)
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sources))
	for s := range r.sources {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Results finalizes the roll-up of run.StudyID, stamped with run's identifiers.
func (a *Aggregator) Results(run dictionary.RunContext) (map[string][]models.SummaryResult, error) {
	r := a.study(run.StudyID, false)
	if r == nil {
		return nil, errors.Wrap(ErrUnknownStudy, run.StudyID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string][]models.SummaryResult, len(r.tables))
	for table, t := range r.tables {
		results := make([]models.SummaryResult, 0, len(t.order))
		for _, name := range t.order {
			res, err := t.vars[name].Finalize()
			if err != nil {
				return nil, errors.Wrapf(err, "finalize %s.%s", table, name)
			}
			run.Stamp(&res, table)
			results = append(results, res)
		}
		out[table] = results
	}
	return out, nil
}

func (a *Aggregator) Report(run dictionary.RunContext) (models.StudyReport, error) {
	tables, err := a.Results(run)
	if err != nil {
		return models.StudyReport{}, err
	}
	return models.StudyReport{StudyID: run.StudyID, Sources: a.Sources(run.StudyID), Tables: tables}, nil
}

// Reset clears the statistics of a study so it can be re-scoped to a new cohort.
// Table and variable structure is kept; committed sources are forgotten.
func (a *Aggregator) Reset(studyID string) {
	r := a.study(studyID, false)
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tables {
		for _, acc := range t.vars {
			acc.Reset()
		}
	}
	r.sources = map[string]bool{}
}
