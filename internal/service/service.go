package service

import (
	"context"

	"github.com/suar-net/suar-relay/internal/model"
)

type IIdentityService interface {
	Resolve(ctx context.Context, authHeader string) (*model.Identity, bool)
}

type IHistoryService interface {
	List(ctx context.Context, identity *model.Identity) ([]*model.HistoryRecord, error)
	Delete(ctx context.Context, identity *model.Identity, id string) error
}

type ICollectionService interface {
	Create(ctx context.Context, identity *model.Identity, req *model.DTOCreateCollectionRequest) (*model.Collection, error)
	List(ctx context.Context, identity *model.Identity) ([]*model.Collection, error)
	Delete(ctx context.Context, identity *model.Identity, id string) error
	AddItem(ctx context.Context, identity *model.Identity, collectionID string, req *model.DTOCreateCollectionItemRequest) (*model.CollectionItem, error)
	ListItems(ctx context.Context, identity *model.Identity, collectionID string) ([]*model.CollectionItem, error)
	DeleteItem(ctx context.Context, identity *model.Identity, id string) error
}

type IEnvironmentService interface {
	Create(ctx context.Context, identity *model.Identity, req *model.DTOCreateEnvironmentRequest) (*model.Environment, error)
	List(ctx context.Context, identity *model.Identity) ([]*model.Environment, error)
	Delete(ctx context.Context, identity *model.Identity, id string) error
}
