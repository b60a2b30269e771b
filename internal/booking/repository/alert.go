package repository

import (
	"context"

	"guichet/pkg/config"
	store "guichet/pkg/db/mongo"
	"guichet/pkg/model"
)

type AlertRepository interface {
	Insert(ctx context.Context, alert *model.Alert) error
}

type mongoAlertRepository struct {
	coll *store.Collection[model.Alert, *model.Alert]
}

func NewMongoAlertRepository(cfg *config.Config) AlertRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAlertRepository{
		coll: store.NewCollection[model.Alert](db, AlertCollection, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoAlertRepository) Insert(ctx context.Context, alert *model.Alert) error {
	return r.coll.Insert(ctx, alert)
}
