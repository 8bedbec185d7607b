// Package importer moves whole projects between YAML documents and the
// database. A document describes one project with its storyboards (and
// their dialogue), scenes, characters and generation models.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"videoflow/internal/model"

	"gopkg.in/yaml.v3"
)

// Document is the YAML representation of one project.
type Document struct {
	Project     string           `yaml:"project"`
	Storyboards []StoryboardYAML `yaml:"storyboards,omitempty"`
	Scenes      []SceneYAML      `yaml:"scenes,omitempty"`
	Characters  []CharacterYAML  `yaml:"characters,omitempty"`
	Models      ModelsYAML       `yaml:"models,omitempty"`
}

// StoryboardYAML is a storyboard. Document order is sequence order.
type StoryboardYAML struct {
	Description string         `yaml:"description,omitempty"`
	ImagePrompt string         `yaml:"image_prompt,omitempty"`
	Dialogues   []DialogueYAML `yaml:"dialogues,omitempty"`
}

type DialogueYAML struct {
	Content   string `yaml:"content"`
	Character string `yaml:"character,omitempty"`
	Tone      string `yaml:"tone,omitempty"`
}

type SceneYAML struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

type CharacterYAML struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Voice       string `yaml:"voice,omitempty"`
}

// ModelsYAML groups models by kind.
type ModelsYAML struct {
	Image   []ModelYAML `yaml:"image,omitempty"`
	Video   []ModelYAML `yaml:"video,omitempty"`
	LipSync []ModelYAML `yaml:"lip_sync,omitempty"`
}

type ModelYAML struct {
	Name    string `yaml:"name"`
	Path    string `yaml:"path,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
	Default bool   `yaml:"default,omitempty"`
}

// ByKind returns the models listed for kind.
func (m ModelsYAML) ByKind(kind model.ModelKind) []ModelYAML {
	switch kind {
	case model.ModelKindImage:
		return m.Image
	case model.ModelKindVideo:
		return m.Video
	case model.ModelKindLipSync:
		return m.LipSync
	}
	return nil
}

func (m *ModelsYAML) add(kind model.ModelKind, y ModelYAML) {
	switch kind {
	case model.ModelKindImage:
		m.Image = append(m.Image, y)
	case model.ModelKindVideo:
		m.Video = append(m.Video, y)
	case model.ModelKindLipSync:
		m.LipSync = append(m.LipSync, y)
	}
}

// LoadFile reads and validates a document from path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a document. Unknown keys are rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: document is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate reports the first problem that would make an import fail
// part-way through.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	for i, sb := range d.Storyboards {
		for j, dl := range sb.Dialogues {
			if strings.TrimSpace(dl.Content) == "" {
				return fmt.Errorf("storyboard %d dialogue %d: content is required", i+1, j+1)
			}
		}
	}
	for i, sc := range d.Scenes {
		if strings.TrimSpace(sc.Name) == "" {
			return fmt.Errorf("scene %d: name is required", i+1)
		}
	}
	for i, c := range d.Characters {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("character %d: name is required", i+1)
		}
	}
	for _, kind := range model.ModelKinds {
		defaults := 0
		for i, m := range d.Models.ByKind(kind) {
			if strings.TrimSpace(m.Name) == "" {
				return fmt.Errorf("%s model %d: name is required", kind, i+1)
			}
			if m.Default {
				defaults++
			}
		}
		if defaults > 1 {
			return fmt.Errorf("%s models: %d marked default, at most one allowed", kind, defaults)
		}
	}
	return nil
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
