package syllabus

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed default_syllabus.yaml
var defaultSyllabusYAML []byte

// DefaultFileName is the name of the optional catalog override inside the config directory.
const DefaultFileName = "syllabus.yaml"

// Paper is one paper of a subject and the chapters it covers, in syllabus order.
type Paper struct {
	Name     string   `yaml:"name" json:"name"`
	Chapters []string `yaml:"chapters" json:"chapters"`
}

// Subject groups the papers of one subject. Icon is a Font Awesome class used by the web form.
type Subject struct {
	Name   string  `yaml:"name" json:"name"`
	Icon   string  `yaml:"icon,omitempty" json:"icon,omitempty"`
	Papers []Paper `yaml:"papers" json:"papers"`
}

// Catalog is the full set of subjects a student can choose chapters from.
type Catalog struct {
	Subjects []Subject `yaml:"subjects" json:"subjects"`
}

// Default returns the built-in catalog. It panics only if the embedded YAML is broken.
func Default() *Catalog {
	c, err := Load(bytes.NewReader(defaultSyllabusYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded syllabus is invalid: %v", err))
	}
	return c
}

// DefaultYAML returns a copy of the built-in catalog source, suitable for writing
// out as an editable override.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultSyllabusYAML))
	copy(out, defaultSyllabusYAML)
	return out
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogParse, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a catalog from path. A missing file returns (nil, nil) so callers
// can fall back to Default.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", path).Msg("Syllabus override not found, using built-in catalog")
			return nil, nil
		}
		log.Error().Err(err).Str("path", path).Msg("Failed to read syllabus file")
		return nil, fmt.Errorf("%w: %w", ErrCatalogRead, err)
	}
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to load syllabus file")
		return nil, err
	}
	log.Debug().Str("path", path).Int("subjects", len(c.Subjects)).Msg("Loaded syllabus override")
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.Subjects) == 0 {
		return fmt.Errorf("%w: no subjects", ErrCatalogInvalid)
	}
	for i, s := range c.Subjects {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: subject #%d has no name", ErrCatalogInvalid, i+1)
		}
		if len(s.Papers) == 0 {
			return fmt.Errorf("%w: subject %q has no papers", ErrCatalogInvalid, s.Name)
		}
		for _, p := range s.Papers {
			if len(p.Chapters) == 0 {
				return fmt.Errorf("%w: %s %q has no chapters", ErrCatalogInvalid, s.Name, p.Name)
			}
		}
	}
	return nil
}

// Subject returns the subject with the given name (case-insensitive).
func (c *Catalog) Subject(name string) (*Subject, bool) {
	for i := range c.Subjects {
		if strings.EqualFold(c.Subjects[i].Name, name) {
			return &c.Subjects[i], true
		}
	}
	return nil, false
}

// Paper returns the named paper of a subject (case-insensitive).
func (s *Subject) Paper(name string) (*Paper, bool) {
	for i := range s.Papers {
		if strings.EqualFold(s.Papers[i].Name, name) {
			return &s.Papers[i], true
		}
	}
	return nil, false
}

// Chapters lists the chapters of subject/paper, or nil if either is unknown.
func (c *Catalog) Chapters(subject, paper string) []string {
	s, ok := c.Subject(subject)
	if !ok {
		return nil
	}
	p, ok := s.Paper(paper)
	if !ok {
		return nil
	}
	return p.Chapters
}

// Has reports whether the chapter exists in the catalog. Chapter names match exactly.
func (c *Catalog) Has(ch SelectedChapter) bool {
	for _, name := range c.Chapters(ch.Subject, ch.Paper) {
		if name == ch.ChapterName {
			return true
		}
	}
	return false
}

// Resolve turns "Subject/Paper/Chapter" into the canonical SelectedChapter from the catalog.
// Subject and paper match case-insensitively; the chapter may itself contain slashes.
func (c *Catalog) Resolve(spec string) (SelectedChapter, error) {
	parts := strings.SplitN(spec, "/", 3)
	if len(parts) != 3 {
		return SelectedChapter{}, fmt.Errorf("%w: %q", ErrChapterSpec, spec)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	s, ok := c.Subject(parts[0])
	if !ok {
		return SelectedChapter{}, fmt.Errorf("%w: unknown subject %q", ErrUnknownChapter, parts[0])
	}
	p, ok := s.Paper(parts[1])
	if !ok {
		return SelectedChapter{}, fmt.Errorf("%w: unknown paper %q for %s", ErrUnknownChapter, parts[1], s.Name)
	}
	for _, name := range p.Chapters {
		if name == parts[2] || strings.EqualFold(name, parts[2]) {
			return SelectedChapter{Subject: s.Name, Paper: p.Name, ChapterName: name}, nil
		}
	}
	return SelectedChapter{}, fmt.Errorf("%w: %q in %s %s", ErrUnknownChapter, parts[2], s.Name, p.Name)
}

// ChapterCount is the total number of chapters across all subjects and papers.
func (c *Catalog) ChapterCount() int {
	n := 0
	for _, s := range c.Subjects {
		for _, p := range s.Papers {
			n += len(p.Chapters)
		}
	}
	return n
}
