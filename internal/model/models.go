package model

import (
	"fmt"
	"time"
)

// Project is the top-level unit of work. It owns storyboards, scenes,
// characters and the three kinds of generation models.
type Project struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Storyboard is an ordered shot within a project.
type Storyboard struct {
	ID             int64
	ProjectID      int64
	SequenceNumber int64
	Description    *string
	ImagePrompt    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Dialogue is a line of spoken content attached to a storyboard.
type Dialogue struct {
	ID             int64
	StoryboardID   int64
	Content        string
	Character      *string
	Tone           *string
	SequenceNumber int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Scene is a named location used by a project.
type Scene struct {
	ID          int64
	ProjectID   int64
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Character is a cast member of a project.
type Character struct {
	ID          int64
	ProjectID   int64
	Name        string
	Description *string
	Voice       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ModelKind distinguishes the generation model tables.
type ModelKind string

const (
	ModelKindImage   ModelKind = "image"
	ModelKindVideo   ModelKind = "video"
	ModelKindLipSync ModelKind = "lip_sync"
)

// ModelKinds lists every kind in display order.
var ModelKinds = []ModelKind{ModelKindImage, ModelKindVideo, ModelKindLipSync}

// ParseModelKind accepts the canonical kind names plus "lipsync" and "lip-sync".
func ParseModelKind(s string) (ModelKind, error) {
	switch s {
	case "image":
		return ModelKindImage, nil
	case "video":
		return ModelKindVideo, nil
	case "lip_sync", "lipsync", "lip-sync":
		return ModelKindLipSync, nil
	default:
		return "", fmt.Errorf("unknown model kind %q (want image, video or lip_sync)", s)
	}
}

// Table returns the table that stores models of this kind.
func (k ModelKind) Table() string {
	switch k {
	case ModelKindImage:
		return "image_models"
	case ModelKindVideo:
		return "video_models"
	case ModelKindLipSync:
		return "lip_sync_models"
	}
	return ""
}

// Valid reports whether k is one of the known kinds.
func (k ModelKind) Valid() bool { return k.Table() != "" }

// Model is a generation-model configuration registered on a project.
// At most one model per (project, kind) has IsDefault set.
type Model struct {
	ID        int64
	Kind      ModelKind
	ProjectID int64
	Name      string
	Path      *string
	APIKey    *string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Video is a rendered video file. Legacy table kept from the first release.
type Video struct {
	ID        int64
	Title     string
	Path      string
	Duration  *int64 // seconds
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tag labels videos. Names are unique.
type Tag struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
