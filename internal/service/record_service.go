package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/suar-net/suar-relay/internal/config"
	"github.com/suar-net/suar-relay/internal/model"
	"github.com/suar-net/suar-relay/internal/repository"
)

type historyService struct {
	repo  repository.IHistoryRepository
	limit int
}

func NewHistoryService(repo repository.IHistoryRepository, limit int) IHistoryService {
	if limit <= 0 {
		limit = config.DefaultHistoryLimit
	}
	return &historyService{repo: repo, limit: limit}
}

// List returns the caller's newest history records, capped at the configured limit.
func (s *historyService) List(ctx context.Context, identity *model.Identity) ([]*model.HistoryRecord, error) {
	return s.repo.ListByUserID(ctx, identity.ID, s.limit)
}

func (s *historyService) Delete(ctx context.Context, identity *model.Identity, id string) error {
	return s.repo.Delete(ctx, identity.ID, id)
}

type collectionService struct {
	repo repository.ICollectionRepository
}

func NewCollectionService(repo repository.ICollectionRepository) ICollectionService {
	return &collectionService{repo: repo}
}

func (s *collectionService) Create(ctx context.Context, identity *model.Identity, req *model.DTOCreateCollectionRequest) (*model.Collection, error) {
	collection := &model.Collection{
		UserID: identity.ID,
		Name:   req.Name,
	}
	if err := s.repo.Create(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *collectionService) List(ctx context.Context, identity *model.Identity) ([]*model.Collection, error) {
	return s.repo.ListByUserID(ctx, identity.ID)
}

func (s *collectionService) Delete(ctx context.Context, identity *model.Identity, id string) error {
	return s.repo.Delete(ctx, identity.ID, id)
}

// AddItem saves a request into one of the caller's collections. Adding to a
// collection the caller does not own fails with repository.ErrNotFound.
func (s *collectionService) AddItem(ctx context.Context, identity *model.Identity, collectionID string, req *model.DTOCreateCollectionItemRequest) (*model.CollectionItem, error) {
	if _, err := s.repo.GetByID(ctx, identity.ID, collectionID); err != nil {
		return nil, err
	}

	item := &model.CollectionItem{
		CollectionID: collectionID,
		UserID:       identity.ID,
		Request:      req.Request,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *collectionService) ListItems(ctx context.Context, identity *model.Identity, collectionID string) ([]*model.CollectionItem, error) {
	return s.repo.ListItems(ctx, identity.ID, collectionID)
}

func (s *collectionService) DeleteItem(ctx context.Context, identity *model.Identity, id string) error {
	return s.repo.DeleteItem(ctx, identity.ID, id)
}

type environmentService struct {
	repo repository.IEnvironmentRepository
}

func NewEnvironmentService(repo repository.IEnvironmentRepository) IEnvironmentService {
	return &environmentService{repo: repo}
}

// Create stores a named variable set. Variables must be a JSON object;
// an absent value is stored as {}.
func (s *environmentService) Create(ctx context.Context, identity *model.Identity, req *model.DTOCreateEnvironmentRequest) (*model.Environment, error) {
	variables := bytes.TrimSpace(req.Variables)
	if len(variables) == 0 || bytes.Equal(variables, []byte("null")) {
		variables = []byte("{}")
	}
	var probe map[string]any
	if err := json.Unmarshal(variables, &probe); err != nil {
		return nil, fmt.Errorf("%w: variables must be an object", ErrInvalidInput)
	}

	env := &model.Environment{
		UserID:    identity.ID,
		Name:      req.Name,
		Variables: variables,
	}
	if err := s.repo.Create(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

func (s *environmentService) List(ctx context.Context, identity *model.Identity) ([]*model.Environment, error) {
	return s.repo.ListByUserID(ctx, identity.ID)
}

func (s *environmentService) Delete(ctx context.Context, identity *model.Identity, id string) error {
	return s.repo.Delete(ctx, identity.ID, id)
}
