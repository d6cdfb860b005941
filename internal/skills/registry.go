// Package skills holds the registry of skill definitions offered on roll
// prompts. Definitions ship as embedded YAML so rules data stays out of
// code.
package skills

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Taroc0/draw-steel/internal/platform/errors"
)

//go:embed data/*.yaml
var embeddedSkillsFS embed.FS

var defaultRegistry = mustLoadEmbedded()

// Skill is a single skill definition.
type Skill struct {
	ID       string `yaml:"id"`
	LabelKey string `yaml:"label_key"`
	Group    string `yaml:"group"`
}

// Registry indexes skills by id.
type Registry struct {
	skills map[string]Skill
}

type skillsFile struct {
	Group  string  `yaml:"group"`
	Skills []Skill `yaml:"skills"`
}

// Default returns the registry built from the embedded definitions.
func Default() *Registry {
	return defaultRegistry
}

// LoadEmbedded builds a registry from the embedded skill files.
func LoadEmbedded() (*Registry, error) {
	return LoadFromFS(embeddedSkillsFS)
}

// LoadFromFS builds a registry from every data/*.yaml file in the given
// filesystem. Each file declares one skill group.
func LoadFromFS(skillsFS fs.FS) (*Registry, error) {
	registry := &Registry{skills: make(map[string]Skill)}

	err := fs.WalkDir(skillsFS, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		raw, err := fs.ReadFile(skillsFS, path)
		if err != nil {
			return fmt.Errorf("read skill file %s: %w", path, err)
		}

		var file skillsFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return fmt.Errorf("parse skill file %s: %w", path, err)
		}
		if file.Group == "" {
			return fmt.Errorf("skill file %s is missing a group", path)
		}

		for _, skill := range file.Skills {
			if err := registry.add(path, file.Group, skill); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return registry, nil
}

func (r *Registry) add(path, group string, skill Skill) error {
	if skill.ID == "" {
		return fmt.Errorf("skill file %s has a skill without an id", path)
	}
	if skill.LabelKey == "" {
		return fmt.Errorf("skill %s in %s is missing a label key", skill.ID, path)
	}
	if _, exists := r.skills[skill.ID]; exists {
		return fmt.Errorf("skill %s is defined more than once", skill.ID)
	}
	if skill.Group == "" {
		skill.Group = group
	}
	r.skills[skill.ID] = skill
	return nil
}

// Get returns the skill definition for an id.
func (r *Registry) Get(id string) (Skill, error) {
	skill, ok := r.skills[id]
	if !ok {
		return Skill{}, apperrors.WithMetadata(
			apperrors.CodeSkillNotFound,
			"skill is not registered",
			map[string]string{"skill": id},
		)
	}
	return skill, nil
}

// All returns every skill definition, sorted by id.
func (r *Registry) All() []Skill {
	out := make([]Skill, 0, len(r.skills))
	for _, skill := range r.skills {
		out = append(out, skill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Groups returns the distinct skill groups, sorted.
func (r *Registry) Groups() []string {
	seen := make(map[string]struct{})
	for _, skill := range r.skills {
		seen[skill.Group] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for group := range seen {
		out = append(out, group)
	}
	sort.Strings(out)
	return out
}

func mustLoadEmbedded() *Registry {
	registry, err := LoadEmbedded()
	if err != nil {
		panic(fmt.Sprintf("load embedded skills: %v", err))
	}
	return registry
}
