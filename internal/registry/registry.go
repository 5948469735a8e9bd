// Package registry provides the immutable reference lookup tables the
// enrichment stages depend on: courts, reporters, and judges.
//
// All three registries are loaded once at process start from embedded YAML
// and are never mutated afterward, so lookups are safe from any goroutine.
package registry

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/courts.yaml data/reporters.yaml data/judges.yaml
var dataFS embed.FS

// Court is one entry in the court registry.
type Court struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	CitationString string `yaml:"citation_string" json:"citation_string"`
	Type           string `yaml:"type" json:"type"`
	Level          string `yaml:"level" json:"level"`
}

// Reporter is one edition entry in the reporter registry. The Key is the
// canonical edition token (e.g. "F.3d"); Base names the reporter family.
type Reporter struct {
	Key        string   `yaml:"key" json:"key"`
	Base       string   `yaml:"base" json:"base"`
	Name       string   `yaml:"name" json:"name"`
	Publisher  string   `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	CiteType   string   `yaml:"cite_type" json:"cite_type"`
	Variations []string `yaml:"variations,omitempty" json:"variations,omitempty"`
}

// Judge is one entry in the judge registry.
type Judge struct {
	FullName  string `yaml:"full_name" json:"full_name"`
	ID        string `yaml:"id" json:"id"`
	Slug      string `yaml:"slug" json:"slug"`
	PhotoPath string `yaml:"photo_path,omitempty" json:"photo_path,omitempty"`
}

// Registries bundles the three read-only lookup tables.
type Registries struct {
	courtsByID  map[string]Court
	courts      []Court
	reporters   map[string]Reporter
	reporterLow map[string]Reporter // lower-cased key -> entry
	reporterAll []Reporter
	judges      []Judge
}

type courtsFile struct {
	Courts []Court `yaml:"courts"`
}

type reportersFile struct {
	Reporters []Reporter `yaml:"reporters"`
}

type judgesFile struct {
	Judges []Judge `yaml:"judges"`
}

// Load parses the embedded reference data and builds the lookup tables.
func Load() (*Registries, error) {
	r := &Registries{
		courtsByID:  make(map[string]Court),
		reporters:   make(map[string]Reporter),
		reporterLow: make(map[string]Reporter),
	}

	var cf courtsFile
	if err := unmarshalData("data/courts.yaml", &cf); err != nil {
		return nil, err
	}
	for _, c := range cf.Courts {
		if c.ID == "" {
			return nil, fmt.Errorf("court registry entry %q has empty id", c.Name)
		}
		if _, dup := r.courtsByID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate court id %q", c.ID)
		}
		r.courtsByID[c.ID] = c
	}
	r.courts = cf.Courts
	sort.Slice(r.courts, func(i, j int) bool { return r.courts[i].ID < r.courts[j].ID })

	var rf reportersFile
	if err := unmarshalData("data/reporters.yaml", &rf); err != nil {
		return nil, err
	}
	for _, rep := range rf.Reporters {
		if rep.Key == "" {
			return nil, fmt.Errorf("reporter registry entry %q has empty key", rep.Name)
		}
		if rep.Base == "" {
			rep.Base = rep.Key
		}
		r.reporters[rep.Key] = rep
		r.reporterLow[strings.ToLower(rep.Key)] = rep
		r.reporterAll = append(r.reporterAll, rep)
	}

	var jf judgesFile
	if err := unmarshalData("data/judges.yaml", &jf); err != nil {
		return nil, err
	}
	for _, j := range jf.Judges {
		if j.FullName == "" {
			return nil, fmt.Errorf("judge registry entry %q has empty full_name", j.ID)
		}
	}
	r.judges = jf.Judges

	return r, nil
}

func unmarshalData(path string, out any) error {
	b, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// CourtByID looks up a court by its registry id.
func (r *Registries) CourtByID(id string) (Court, bool) {
	c, ok := r.courtsByID[strings.TrimSpace(id)]
	return c, ok
}

// CourtCount returns the number of courts loaded.
func (r *Registries) CourtCount() int { return len(r.courts) }

// ReporterCount returns the number of reporter editions loaded.
func (r *Registries) ReporterCount() int { return len(r.reporterAll) }

// JudgeCount returns the number of judges loaded.
func (r *Registries) JudgeCount() int { return len(r.judges) }
