package repository

import (
	"context"

	"guichet/pkg/config"
	store "guichet/pkg/db/mongo"
	"guichet/pkg/model"
)

type SiteRepository interface {
	Insert(ctx context.Context, site *model.Site) error
	FindByID(ctx context.Context, id string) (*model.Site, error)
	Save(ctx context.Context, site *model.Site, expectedVersion int64) error
}

type mongoSiteRepository struct {
	coll *store.Collection[model.Site, *model.Site]
}

func NewMongoSiteRepository(cfg *config.Config) SiteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSiteRepository{
		coll: store.NewCollection[model.Site](db, SiteCollection, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoSiteRepository) Insert(ctx context.Context, site *model.Site) error {
	return r.coll.Insert(ctx, site)
}

func (r *mongoSiteRepository) FindByID(ctx context.Context, id string) (*model.Site, error) {
	return r.coll.Get(ctx, id)
}

func (r *mongoSiteRepository) Save(ctx context.Context, site *model.Site, expectedVersion int64) error {
	return r.coll.Save(ctx, site, expectedVersion)
}
