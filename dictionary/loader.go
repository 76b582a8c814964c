package dictionary

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pivolan/ddsummary/summary"
)

// ErrVocabularyNotFound is returned by a VocabularySource for an unknown reference.
var ErrVocabularyNotFound = errors.New("vocabulary not found")

// VocabularySource resolves a vocabulary reference to its code set.
type VocabularySource interface {
	Vocabulary(ref string) (*summary.Vocabulary, error)
}

// StaticVocabularies is an in-memory VocabularySource keyed by reference.
type StaticVocabularies map[string]*summary.Vocabulary

func (s StaticVocabularies) Vocabulary(ref string) (*summary.Vocabulary, error) {
	if v, ok := s[ref]; ok {
		return v, nil
	}
	return nil, errors.Wrap(ErrVocabularyNotFound, ref)
}

type fileDictionary struct {
	Name         string                       `yaml:"name"`
	Vocabularies map[string]map[string]string `yaml:"vocabularies"`
	Tables       []fileTable                  `yaml:"tables"`
}

type fileTable struct {
	Name      string         `yaml:"name"`
	Variables []fileVariable `yaml:"variables"`
}

type fileVariable struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type"`
	Vocabulary string            `yaml:"vocabulary"`
	Values     map[string]string `yaml:"values"`
}

// Load reads a YAML data dictionary. Vocabulary references are resolved first
// against the file's own vocabularies block, then against source. A reference
// that cannot be resolved degrades the variable to Text. Every variable is bound
// to the same frozen missing encoding.
func Load(r io.Reader, source VocabularySource, missing summary.MissingEncoding) (*Dictionary, error) {
	var file fileDictionary
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decode data dictionary")
	}
	if len(file.Tables) == 0 {
		return nil, errors.Errorf("data dictionary %q declares no tables", file.Name)
	}

	local := StaticVocabularies{}
	for ref, codes := range file.Vocabularies {
		local[ref] = summary.NewVocabulary(codes)
	}
	resolved := map[string]*summary.Vocabulary{}
	resolve := func(ref string) *summary.Vocabulary {
		if v, ok := resolved[ref]; ok {
			return v
		}
		v, err := local.Vocabulary(ref)
		if err != nil && source != nil {
			v, err = source.Vocabulary(ref)
		}
		if err != nil {
			zap.L().Warn("vocabulary unavailable", zap.String("vocabulary", ref), zap.Error(err))
			v = nil
		}
		resolved[ref] = v
		return v
	}

	tables := make([]*Table, 0, len(file.Tables))
	for _, ft := range file.Tables {
		vars := make([]*summary.Variable, 0, len(ft.Variables))
		for _, fv := range ft.Variables {
			var vocab *summary.Vocabulary
			switch {
			case len(fv.Values) > 0:
				vocab = summary.NewVocabulary(fv.Values)
			case fv.Vocabulary != "":
				vocab = resolve(fv.Vocabulary)
			}
			vars = append(vars, summary.NewVariable(NormalizeHeader(fv.Name), fv.Type, vocab, missing))
		}
		t, err := NewTable(NormalizeHeader(ft.Name), vars...)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return New(file.Name, tables...)
}
