package main

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pivolan/ddsummary/dictionary"
)

const SEPARATOR = ','

// readCSVRows reads a delimited table into rows keyed by raw header. Short rows
// leave their trailing columns out; surplus cells are dropped.
func readCSVRows(r io.Reader, comma rune) ([]dictionary.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	first, err := cr.Read()
	if err == io.EOF {
		return []dictionary.Row{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	analysis := AnalyzeHeaders(append([]string(nil), first...))

	rows := []dictionary.Row{}
	toRow := func(record []string) dictionary.Row {
		row := make(dictionary.Row, len(analysis.Headers))
		for i, h := range analysis.Headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		return row
	}
	if analysis.FirstRowIsData {
		rows = append(rows, toRow(analysis.FirstDataRow))
	}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read row %d", len(rows)+1)
		}
		rows = append(rows, toRow(record))
	}
	return rows, nil
}

func separatorFor(path string) rune {
	switch dataExtension(path) {
	case ".tsv", ".txt":
		return '\t'
	}
	return SEPARATOR
}

func isTableFile(path string) bool {
	switch dataExtension(path) {
	case ".csv", ".tsv", ".txt":
		return true
	case "":
		return strings.EqualFold(filepath.Ext(path), ".zip")
	}
	return false
}

// readTableFile reads one table file, archived or not.
func readTableFile(path string) ([]dictionary.Row, error) {
	rc, err := openTableFile(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	rows, err := readCSVRows(rc, separatorFor(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return rows, nil
}

// loadWorkspaceDir reads every table file in dir. Tables are keyed by their
// normalized file name. A file that cannot be read is logged and contributes
// an empty table.
func loadWorkspaceDir(dir string, logger *zap.Logger) (map[string][]dictionary.Row, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read workspace dir")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isTableFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	data := make(map[string][]dictionary.Row, len(names))
	for _, name := range names {
		table := dictionary.NormalizeHeader(tableFileName(name))
		if _, dup := data[table]; dup {
			logger.Warn("table file shadowed by an earlier one", zap.String("file", name), zap.String("table", table))
			continue
		}
		rows, err := readTableFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("table unreadable, summarizing as empty", zap.String("file", name), zap.Error(err))
			rows = []dictionary.Row{}
		}
		data[table] = rows
	}
	return data, nil
}
