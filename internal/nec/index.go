package nec

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sections.toml
var sectionsTOML []byte

// Subsection is one lettered subdivision of a code section.
type Subsection struct {
	ID      string `toml:"id"`
	Content string `toml:"content"`
}

// Section is one NEC code section with its curated retrieval keywords.
type Section struct {
	ID          string       `toml:"id"`
	Title       string       `toml:"title"`
	Content     string       `toml:"content"`
	Keywords    []string     `toml:"keywords"`
	Subsections []Subsection `toml:"subsections"`
}

type document struct {
	Sections []Section `toml:"section"`
}

// Index is the read-only code section catalog. Sections keep their document
// order so relevance ties resolve deterministically.
type Index struct {
	sections []Section
	byID     map[string]int
}

// NewIndex parses the embedded section catalog.
func NewIndex() (*Index, error) {
	return parseIndex(sectionsTOML)
}

func parseIndex(data []byte) (*Index, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse code sections: %w", err)
	}
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("parse code sections: no sections defined")
	}
	index := &Index{
		sections: doc.Sections,
		byID:     make(map[string]int, len(doc.Sections)),
	}
	for i, section := range doc.Sections {
		id := strings.TrimSpace(section.ID)
		if id == "" {
			return nil, fmt.Errorf("parse code sections: entry %d has no id", i)
		}
		if _, exists := index.byID[id]; exists {
			return nil, fmt.Errorf("parse code sections: duplicate section %s", id)
		}
		index.byID[id] = i
	}
	return index, nil
}

// Sections returns the cataloged sections in document order.
func (x *Index) Sections() []Section {
	sections := make([]Section, len(x.sections))
	copy(sections, x.sections)
	return sections
}

// Lookup returns the section with the given id.
func (x *Index) Lookup(id string) (Section, bool) {
	i, ok := x.byID[strings.TrimSpace(id)]
	if !ok {
		return Section{}, false
	}
	return x.sections[i], true
}

// Len reports the number of cataloged sections.
func (x *Index) Len() int { return len(x.sections) }
