package importer

import (
	"context"
	"fmt"
	"sort"

	"videoflow/internal/database"
	"videoflow/internal/model"
	"videoflow/internal/repository"
)

// Result summarizes a completed import.
type Result struct {
	ProjectID   int64
	Storyboards int
	Dialogues   int
	Scenes      int
	Characters  int
	Models      int
}

// Importer writes documents into the database and reads projects back out.
type Importer struct {
	db     *database.DB
	logger repository.Logger
}

func New(db *database.DB, logger repository.Logger) *Importer {
	if logger == nil {
		logger = repository.NewNopLogger()
	}
	return &Importer{db: db, logger: logger}
}

// Import creates the project described by doc. Everything is written in one
// transaction: on any failure the database is left as it was.
func (im *Importer) Import(ctx context.Context, doc *Document) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var res Result
	err := im.db.WithTx(ctx, func(tx *database.DB) error {
		repos := repository.New(tx, im.logger)

		pid, err := repos.Projects.Create(ctx, doc.Project)
		if err != nil {
			return err
		}
		res.ProjectID = pid

		for _, sb := range doc.Storyboards {
			sid, err := repos.Storyboards.Create(ctx, model.NewStoryboard{
				ProjectID:   pid,
				Description: sb.Description,
				ImagePrompt: sb.ImagePrompt,
			})
			if err != nil {
				return err
			}
			res.Storyboards++

			for _, dl := range sb.Dialogues {
				if _, err := repos.Dialogues.Create(ctx, model.NewDialogue{
					StoryboardID: sid,
					Content:      dl.Content,
					Character:    dl.Character,
					Tone:         dl.Tone,
				}); err != nil {
					return err
				}
				res.Dialogues++
			}
		}

		for _, sc := range doc.Scenes {
			if _, err := repos.Scenes.Create(ctx, model.NewScene{ProjectID: pid, Name: sc.Name, Description: sc.Description}); err != nil {
				return err
			}
			res.Scenes++
		}

		for _, c := range doc.Characters {
			if _, err := repos.Characters.Create(ctx, model.NewCharacter{
				ProjectID:   pid,
				Name:        c.Name,
				Description: c.Description,
				Voice:       c.Voice,
			}); err != nil {
				return err
			}
			res.Characters++
		}

		for _, kind := range model.ModelKinds {
			models := repos.Models(kind)
			for _, m := range doc.Models.ByKind(kind) {
				mid, err := models.Create(ctx, model.NewModel{ProjectID: pid, Name: m.Name, Path: m.Path, APIKey: m.APIKey})
				if err != nil {
					return err
				}
				if m.Default {
					if err := models.SetDefault(ctx, pid, mid); err != nil {
						return err
					}
				}
				res.Models++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("importing project %q: %w", doc.Project, err)
	}

	im.logger.Info("imported project",
		"project_id", res.ProjectID,
		"storyboards", res.Storyboards,
		"dialogues", res.Dialogues,
		"models", res.Models)
	return &res, nil
}

// Export builds the document for an existing project. Storyboards and
// dialogue appear in sequence order, so importing the result reproduces the
// same ordering numbered from 1.
func (im *Importer) Export(ctx context.Context, projectID int64) (*Document, error) {
	repos := repository.New(im.db, im.logger)

	p, err := repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &repository.NotFoundError{Entity: "project", ID: projectID}
	}
	doc := &Document{Project: p.Name}

	boards, err := repos.Storyboards.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, sb := range boards {
		lines, err := repos.Dialogues.GetByStoryboardID(ctx, sb.ID)
		if err != nil {
			return nil, err
		}
		y := StoryboardYAML{Description: deref(sb.Description), ImagePrompt: deref(sb.ImagePrompt)}
		for _, dl := range lines {
			y.Dialogues = append(y.Dialogues, DialogueYAML{
				Content:   dl.Content,
				Character: deref(dl.Character),
				Tone:      deref(dl.Tone),
			})
		}
		doc.Storyboards = append(doc.Storyboards, y)
	}

	scenes, err := repos.Scenes.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	// Listings are newest first; documents read oldest first.
	for i := len(scenes) - 1; i >= 0; i-- {
		doc.Scenes = append(doc.Scenes, SceneYAML{Name: scenes[i].Name, Description: deref(scenes[i].Description)})
	}

	cast, err := repos.Characters.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := len(cast) - 1; i >= 0; i-- {
		c := cast[i]
		doc.Characters = append(doc.Characters, CharacterYAML{Name: c.Name, Description: deref(c.Description), Voice: deref(c.Voice)})
	}

	for _, kind := range model.ModelKinds {
		models, err := repos.Models(kind).GetByProjectID(ctx, projectID)
		if err != nil {
			return nil, err
		}
		// Listings put the default first; documents keep creation order.
		sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
		for _, m := range models {
			doc.Models.add(kind, ModelYAML{Name: m.Name, Path: deref(m.Path), APIKey: deref(m.APIKey), Default: m.IsDefault})
		}
	}
	return doc, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
