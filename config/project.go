package config

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pivolan/ddsummary/summary"
)

// Workspace is one data source of a project. Rows come from Path (a directory of
// CSV files or archives) or from Database on the configured DSN.
type Workspace struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
	StudyID   string `yaml:"study_id"`
	Path      string `yaml:"path"`
	Database  string `yaml:"database"`
}

// Project binds a data dictionary to the workspaces of one consortium.
type Project struct {
	Name         string      `yaml:"name"`
	WsPrefix     string      `yaml:"ws_prefix"`
	SystemPrefix string      `yaml:"system_prefix"`
	Tag          string      `yaml:"tag"`
	Missing      string      `yaml:"missing"`
	Dictionary   string      `yaml:"dictionary"`
	Workspaces   []Workspace `yaml:"workspaces"`

	prefix *regexp.Regexp
}

func LoadProject(r io.Reader) (*Project, error) {
	var p Project
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decode project")
	}
	if p.Name == "" {
		return nil, errors.New("project has no name")
	}
	if p.Dictionary == "" {
		return nil, errors.Errorf("project %s has no dictionary", p.Name)
	}
	if p.WsPrefix != "" {
		re, err := regexp.Compile(p.WsPrefix)
		if err != nil {
			return nil, errors.Wrapf(err, "project %s ws_prefix", p.Name)
		}
		p.prefix = re
	}
	return &p, nil
}

func LoadProjectFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open project")
	}
	defer f.Close()
	return LoadProject(f)
}

// InConsortium reports whether a workspace name belongs to the project. Without
// a ws_prefix every workspace does.
func (p *Project) InConsortium(workspace string) bool {
	if p.prefix == nil {
		return true
	}
	return p.prefix.MatchString(workspace)
}

// Members returns the project's workspaces that match its prefix.
func (p *Project) Members() []Workspace {
	var out []Workspace
	for _, ws := range p.Workspaces {
		if p.InConsortium(ws.Name) {
			out = append(out, ws)
		}
	}
	return out
}

func (p *Project) MissingEncoding() summary.MissingEncoding {
	return summary.ParseMissingEncoding(p.Missing)
}

// MetaTag splits the "system|code" tag stamped onto outputs.
func (p *Project) MetaTag() (system, code string) {
	system, code, _ = strings.Cut(p.Tag, "|")
	return system, code
}
