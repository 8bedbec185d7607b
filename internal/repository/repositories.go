package repository

import (
	"videoflow/internal/database"
	"videoflow/internal/model"
)

// Repositories bundles every repository over one storage context. Building
// it over a transaction-bound DB makes every call join that transaction.
type Repositories struct {
	Projects      *ProjectRepository
	Storyboards   *StoryboardRepository
	Dialogues     *DialogueRepository
	Scenes        *SceneRepository
	Characters    *CharacterRepository
	ImageModels   *ModelRepository
	VideoModels   *ModelRepository
	LipSyncModels *ModelRepository
	Videos        *VideoRepository
	Tags          *TagRepository
	Query         *QueryFacade
}

func New(db *database.DB, logger Logger) *Repositories {
	logger = orNop(logger)
	return &Repositories{
		Projects:      NewProjectRepository(db, logger),
		Storyboards:   NewStoryboardRepository(db, logger),
		Dialogues:     NewDialogueRepository(db, logger),
		Scenes:        NewSceneRepository(db, logger),
		Characters:    NewCharacterRepository(db, logger),
		ImageModels:   NewModelRepository(db, model.ModelKindImage, logger),
		VideoModels:   NewModelRepository(db, model.ModelKindVideo, logger),
		LipSyncModels: NewModelRepository(db, model.ModelKindLipSync, logger),
		Videos:        NewVideoRepository(db, logger),
		Tags:          NewTagRepository(db, logger),
		Query:         NewQueryFacade(db, logger),
	}
}

// Models returns the repository for kind, or nil for an unknown kind.
func (r *Repositories) Models(kind model.ModelKind) *ModelRepository {
	switch kind {
	case model.ModelKindImage:
		return r.ImageModels
	case model.ModelKindVideo:
		return r.VideoModels
	case model.ModelKindLipSync:
		return r.LipSyncModels
	}
	return nil
}
