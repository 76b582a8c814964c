package main

import (
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

var archiveExtensions = []string{".zip", ".gz", ".lz4"}

// tableFileName strips archive and data extensions: "Participant.csv.gz" is
// "Participant".
func tableFileName(path string) string {
	name := filepath.Base(path)
	for {
		ext := strings.ToLower(filepath.Ext(name))
		switch ext {
		case ".zip", ".gz", ".lz4", ".csv", ".tsv", ".txt":
			name = strings.TrimSuffix(name, filepath.Ext(name))
			continue
		}
		return name
	}
}

// dataExtension is the extension of the payload once archives are unwrapped.
func dataExtension(path string) string {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range archiveExtensions {
		name = strings.TrimSuffix(name, ext)
	}
	return filepath.Ext(name)
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openTableFile opens a data file for streaming, unwrapping zip, gzip and lz4.
// A zip archive contributes its largest file. Nothing is extracted to disk.
func openTableFile(path string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return openZip(path)
	case ".gz":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open")
		}
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "gzip %s", path)
		}
		return &multiCloser{Reader: gr, closers: []io.Closer{f, gr}}, nil
	case ".lz4":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open")
		}
		return &multiCloser{Reader: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	return f, nil
}

func openZip(path string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "zip %s", path)
	}

	var largestFile *zip.File
	var largestSize uint64
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largestFile == nil || f.UncompressedSize64 > largestSize {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		r.Close()
		return nil, errors.Errorf("zip %s is empty", path)
	}

	rc, err := largestFile.Open()
	if err != nil {
		r.Close()
		return nil, errors.Wrapf(err, "zip %s: %s", path, largestFile.Name)
	}
	return &multiCloser{Reader: rc, closers: []io.Closer{r, rc}}, nil
}
