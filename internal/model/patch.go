package model

// NewStoryboard holds the fields for creating a storyboard.
// A nil SequenceNumber appends the storyboard after the current last one.
type NewStoryboard struct {
	ProjectID      int64
	SequenceNumber *int64
	Description    string
	ImagePrompt    string
}

// NewDialogue holds the fields for creating a dialogue line.
// A nil SequenceNumber appends the line after the current last one.
type NewDialogue struct {
	StoryboardID   int64
	Content        string
	Character      string
	Tone           string
	SequenceNumber *int64
}

// NewScene holds the fields for creating a scene.
type NewScene struct {
	ProjectID   int64
	Name        string
	Description string
}

// NewCharacter holds the fields for creating a character.
type NewCharacter struct {
	ProjectID   int64
	Name        string
	Description string
	Voice       string
}

// NewModel holds the fields for creating a generation model. New models are
// never default; use SetDefault afterwards.
type NewModel struct {
	ProjectID int64
	Name      string
	Path      string
	APIKey    string
}

// NewVideo holds the fields for registering a video file.
type NewVideo struct {
	Title    string
	Path     string
	Duration *int64
}

// ProjectPatch lists the project fields to change.
type ProjectPatch struct {
	Name Optional[string]
}

func (p ProjectPatch) IsEmpty() bool { return !p.Name.IsSet() }

// StoryboardPatch lists the storyboard fields to change.
type StoryboardPatch struct {
	SequenceNumber Optional[int64]
	Description    Optional[*string]
	ImagePrompt    Optional[*string]
}

func (p StoryboardPatch) IsEmpty() bool {
	return !p.SequenceNumber.IsSet() && !p.Description.IsSet() && !p.ImagePrompt.IsSet()
}

// DialoguePatch lists the dialogue fields to change.
type DialoguePatch struct {
	Content        Optional[string]
	Character      Optional[*string]
	Tone           Optional[*string]
	SequenceNumber Optional[int64]
}

func (p DialoguePatch) IsEmpty() bool {
	return !p.Content.IsSet() && !p.Character.IsSet() && !p.Tone.IsSet() && !p.SequenceNumber.IsSet()
}

// ScenePatch lists the scene fields to change.
type ScenePatch struct {
	Name        Optional[string]
	Description Optional[*string]
}

func (p ScenePatch) IsEmpty() bool { return !p.Name.IsSet() && !p.Description.IsSet() }

// CharacterPatch lists the character fields to change.
type CharacterPatch struct {
	Name        Optional[string]
	Description Optional[*string]
	Voice       Optional[*string]
}

func (p CharacterPatch) IsEmpty() bool {
	return !p.Name.IsSet() && !p.Description.IsSet() && !p.Voice.IsSet()
}

// ModelPatch lists the model fields to change. The default flag is managed
// by SetDefault only.
type ModelPatch struct {
	Name   Optional[string]
	Path   Optional[*string]
	APIKey Optional[*string]
}

func (p ModelPatch) IsEmpty() bool {
	return !p.Name.IsSet() && !p.Path.IsSet() && !p.APIKey.IsSet()
}

// VideoPatch lists the video fields to change.
type VideoPatch struct {
	Title    Optional[string]
	Path     Optional[string]
	Duration Optional[*int64]
}

func (p VideoPatch) IsEmpty() bool {
	return !p.Title.IsSet() && !p.Path.IsSet() && !p.Duration.IsSet()
}
