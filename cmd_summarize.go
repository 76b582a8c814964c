package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pivolan/ddsummary/config"
	"github.com/pivolan/ddsummary/dictionary"
	"github.com/pivolan/ddsummary/domain/models"
	"github.com/pivolan/ddsummary/plot"
	"github.com/pivolan/ddsummary/study"
	"github.com/pivolan/ddsummary/summary"
)

var (
	missingFlag string
	reportDir   string
	chartsDir   string
	dbDsn       string
	notify      bool
	parallelism int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <project.yaml>...",
	Short: "Summarize every workspace of the given projects",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&missingFlag, "missing", "", `Comma separated values treated as missing, e.g. "NA,-999" (overrides the project)`)
	summarizeCmd.Flags().StringVar(&reportDir, "report", "", "Directory for JSON workspace and study reports")
	summarizeCmd.Flags().StringVar(&chartsDir, "charts", "", "Directory for enumeration charts")
	summarizeCmd.Flags().StringVar(&dbDsn, "db", "", "Database DSN for workspaces read from a database (default DD_DB_DSN)")
	summarizeCmd.Flags().BoolVar(&notify, "notify", false, "Send study summaries and charts to Telegram")
	summarizeCmd.Flags().IntVar(&parallelism, "parallel", 4, "Workspaces summarized at once")
}

type loadedProject struct {
	*config.Project
	dir        string
	dictionary *dictionary.Dictionary
}

// loadProject reads a project file and its data dictionary, which is resolved
// relative to the project file. An empty missing list keeps the project's own.
func loadProject(path, missing string) (*loadedProject, error) {
	p, err := config.LoadProjectFile(path)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	dir := filepath.Dir(path)
	encoding := p.MissingEncoding()
	if missing != "" {
		encoding = summary.ParseMissingEncoding(missing)
	}

	dictPath := p.Dictionary
	if !filepath.IsAbs(dictPath) {
		dictPath = filepath.Join(dir, dictPath)
	}
	f, err := os.Open(dictPath)
	if err != nil {
		return nil, errors.Wrapf(err, "project %s dictionary", p.Name)
	}
	defer f.Close()
	d, err := dictionary.Load(f, nil, encoding)
	if err != nil {
		return nil, errors.Wrapf(err, "project %s dictionary", p.Name)
	}
	return &loadedProject{Project: p, dir: dir, dictionary: d.WithLogger(logger)}, nil
}

// rowSource supplies the raw tables of a workspace.
type rowSource interface {
	Load(ws config.Workspace) (map[string][]dictionary.Row, error)
}

type workspaceSource struct {
	dir string
	db  *gorm.DB
}

func (s workspaceSource) Load(ws config.Workspace) (map[string][]dictionary.Row, error) {
	switch {
	case ws.Path != "":
		path := ws.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		return loadWorkspaceDir(path, logger.With(zap.String("workspace", ws.Name)))
	case ws.Database != "":
		if s.db == nil {
			return nil, errors.Errorf("workspace %s reads database %s but no DSN is configured", ws.Name, ws.Database)
		}
		return loadDatabase(s.db, ws.Database, logger.With(zap.String("workspace", ws.Name)))
	}
	return nil, errors.Errorf("workspace %s has neither path nor database", ws.Name)
}

type workspaceOutcome struct {
	workspace    config.Workspace
	summaries    map[string]*dictionary.TableSummary
	report       models.WorkspaceReport
	unrecognized []models.UnrecognizedTable
}

func summarizeWorkspace(p *loadedProject, src rowSource, ws config.Workspace) (*workspaceOutcome, error) {
	data, err := src.Load(ws)
	if err != nil {
		// Declared tables still report, with zero rows.
		logger.Warn("workspace rows unavailable, summarizing as empty",
			zap.String("workspace", ws.Name), zap.Error(err))
		data = nil
	}
	run := dictionary.NewRunContext(p.SystemPrefix, p.Tag, ws.StudyID, ws.Name)
	summaries, unrecognized, err := p.dictionary.Summarize(run, data)
	if err != nil {
		return nil, errors.Wrapf(err, "workspace %s", ws.Name)
	}

	report := models.WorkspaceReport{
		RunID:              run.RunID,
		Workspace:          ws.Name,
		StudyID:            ws.StudyID,
		RecognizedTables:   make(map[string]models.TableReport, len(summaries)),
		UnrecognizedTables: unrecognized,
	}
	if p.Tag != "" {
		system, code := p.MetaTag()
		report.MetaTag = &models.Coding{System: system, Code: code}
	}
	for name, s := range summaries {
		report.RecognizedTables[name] = s.Report
	}
	logger.Info("workspace summarized",
		zap.String("project", p.Name),
		zap.String("workspace", ws.Name),
		zap.String("study", ws.StudyID),
		zap.Int("tables", len(summaries)),
		zap.Int("unrecognized_tables", len(unrecognized)),
	)
	return &workspaceOutcome{workspace: ws, summaries: summaries, report: report, unrecognized: unrecognized}, nil
}

// summarizeProject summarizes every member workspace concurrently and commits
// the results to agg. Outcomes come back in workspace order.
func summarizeProject(ctx context.Context, p *loadedProject, src rowSource, agg *study.Aggregator) ([]*workspaceOutcome, error) {
	members := p.Members()
	outcomes := make([]*workspaceOutcome, len(members))

	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, ws := range members {
		i, ws := i, ws
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := summarizeWorkspace(p, src, ws)
			if err != nil {
				return err
			}
			err = agg.Commit(ws.StudyID, ws.Name, out.summaries)
			switch {
			case errors.Is(err, study.ErrInvalidStudyID):
				logger.Warn("workspace has no registered study, left out of roll-up",
					zap.String("workspace", ws.Name), zap.String("study", ws.StudyID))
			case err != nil:
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create report dir")
	}
	return errors.Wrap(os.WriteFile(path, append(b, '\n'), 0o644), "write report")
}

func printWorkspace(w io.Writer, out *workspaceOutcome) {
	fmt.Fprintf(w, "== %s (study %s)\n", out.workspace.Name, out.workspace.StudyID)
	tables := make([]string, 0, len(out.summaries))
	for name := range out.summaries {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	for _, name := range tables {
		s := out.summaries[name]
		fmt.Fprintln(w, GenerateSummaryTable(name, s.Results, format))
		fmt.Fprintln(w, GenerateDiscrepancyTable(s.Report, format))
	}
	if len(out.unrecognized) > 0 {
		fmt.Fprintln(w, GenerateUnrecognizedTables(out.unrecognized, format))
	}
}

func studyResults(report models.StudyReport) []models.SummaryResult {
	tables := make([]string, 0, len(report.Tables))
	for name := range report.Tables {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	var all []models.SummaryResult
	for _, name := range tables {
		all = append(all, report.Tables[name]...)
	}
	return all
}

// drawStudyCharts writes an HTML chart page for a study and returns PNG charts
// of its enumerated variables keyed by chart name.
func drawStudyCharts(dir string, report models.StudyReport) (map[string][]byte, error) {
	results := studyResults(report)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create charts dir")
		}
		f, err := os.Create(filepath.Join(dir, report.StudyID+".html"))
		if err != nil {
			return nil, errors.Wrap(err, "create chart page")
		}
		_, err = plot.RenderEnumerationPage(f, report.StudyID, results)
		f.Close()
		if err != nil && !errors.Is(err, plot.ErrNothingToPlot) {
			return nil, err
		}
	}

	charts := map[string][]byte{}
	for _, res := range results {
		if res.Enum == nil {
			continue
		}
		data, _ := plot.NewEnumerationData(res)
		png, err := plot.DrawPlotBar(data)
		if errors.Is(err, plot.ErrNothingToPlot) {
			continue
		}
		if err != nil {
			return nil, err
		}
		charts[data.GetNameGraph()] = png
		if dir != "" {
			if err := os.WriteFile(filepath.Join(dir, report.StudyID+"-"+data.GetNameGraph()+".png"), png, 0o644); err != nil {
				return nil, errors.Wrap(err, "write chart")
			}
		}
	}
	return charts, nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if dbDsn == "" {
		dbDsn = cfg.DbDsn
	}

	var reporter *telegramReporter
	if notify {
		if !cfg.TelegramEnabled() {
			return errors.New("--notify needs DD_TG_TOKEN and DD_TG_CHAT")
		}
		r, err := newTelegramReporter(cfg.TgToken, cfg.TgChat, logger)
		if err != nil {
			return err
		}
		reporter = r
	}

	var db *gorm.DB
	if dbDsn != "" {
		conn, err := openDatabase(dbDsn)
		if err != nil {
			return err
		}
		db = conn
	}

	agg := study.New(logger)
	out := cmd.OutOrStdout()
	systems := map[string]string{}
	for _, path := range args {
		p, err := loadProject(path, missingFlag)
		if err != nil {
			return err
		}
		outcomes, err := summarizeProject(cmd.Context(), p, workspaceSource{dir: p.dir, db: db}, agg)
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			if _, ok := systems[o.workspace.StudyID]; !ok {
				systems[o.workspace.StudyID] = p.SystemPrefix
			}
			printWorkspace(out, o)
			if reportDir != "" {
				if err := writeJSON(filepath.Join(reportDir, p.Name, o.workspace.Name+".json"), o.report); err != nil {
					return err
				}
			}
		}
	}

	for _, id := range agg.Studies() {
		run := dictionary.NewRunContext(systems[id], "", id, "")
		report, err := agg.Report(run)
		if err != nil {
			return err
		}
		text := GenerateSummaryTable(fmt.Sprintf("study %s (%d sources)", id, len(report.Sources)), studyResults(report), format)
		fmt.Fprintln(out, text)

		if reportDir != "" {
			if err := writeJSON(filepath.Join(reportDir, "study-"+id+".json"), report); err != nil {
				return err
			}
		}
		if chartsDir == "" && reporter == nil {
			continue
		}
		charts, err := drawStudyCharts(chartsDir, report)
		if err != nil {
			return err
		}
		if reporter == nil {
			continue
		}
		if err := reporter.SendText(text); err != nil {
			return err
		}
		names := make([]string, 0, len(charts))
		for name := range charts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := reporter.SendChart(charts[name], id+" "+name); err != nil {
				return err
			}
		}
	}
	return nil
}
