package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"guichet/pkg/config"
	store "guichet/pkg/db/mongo"
	"guichet/pkg/model"
)

const (
	SlotCollection  = "creneaux"
	SiteCollection  = "sites"
	AlertCollection = "alertes"
)

// SlotRepository is the slot-facing surface of the versioned document
// store. Save is a compare-and-swap; SaveUnchecked is last-writer-wins
// for release paths where conflict is not business-relevant.
type SlotRepository interface {
	InsertMany(ctx context.Context, slots []*model.Slot) error
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	FindAvailable(ctx context.Context, siteID string, from time.Time, until time.Time) ([]*model.Slot, error)
	FindUpcoming(ctx context.Context, siteID string, from time.Time, freeOnly bool, limit int) ([]*model.Slot, error)
	Save(ctx context.Context, slot *model.Slot, expectedVersion int64) error
	SaveUnchecked(ctx context.Context, slot *model.Slot) error
	Reload(ctx context.Context, slot *model.Slot) error
}

type mongoSlotRepository struct {
	coll *store.Collection[model.Slot, *model.Slot]
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		coll: store.NewCollection[model.Slot](db, SlotCollection, cfg.ReadTimeout, cfg.WriteTimeout),
	}
}

func (r *mongoSlotRepository) InsertMany(ctx context.Context, slots []*model.Slot) error {
	return r.coll.InsertMany(ctx, slots)
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	return r.coll.Get(ctx, id)
}

// FindAvailable returns the free slots at a site starting at or after
// from, ordered by start time. A zero until leaves the window open-ended.
// Ties on start time (one slot per desk) are ordered by ID so concurrent
// searches walk the candidates in the same order.
func (r *mongoSlotRepository) FindAvailable(ctx context.Context, siteID string, from time.Time, until time.Time) ([]*model.Slot, error) {
	startRange := bson.M{"$gte": from}
	if !until.IsZero() {
		startRange["$lt"] = until
	}
	filter := bson.M{
		"site_id":    siteID,
		"reserved":   false,
		"start_time": startRange,
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})

	return r.coll.Find(ctx, filter, opts)
}

func (r *mongoSlotRepository) FindUpcoming(ctx context.Context, siteID string, from time.Time, freeOnly bool, limit int) ([]*model.Slot, error) {
	filter := bson.M{
		"site_id":    siteID,
		"start_time": bson.M{"$gte": from},
	}
	if freeOnly {
		filter["reserved"] = false
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	return r.coll.Find(ctx, filter, opts)
}

func (r *mongoSlotRepository) Save(ctx context.Context, slot *model.Slot, expectedVersion int64) error {
	return r.coll.Save(ctx, slot, expectedVersion)
}

func (r *mongoSlotRepository) SaveUnchecked(ctx context.Context, slot *model.Slot) error {
	return r.coll.SaveUnchecked(ctx, slot)
}

func (r *mongoSlotRepository) Reload(ctx context.Context, slot *model.Slot) error {
	return r.coll.Reload(ctx, slot)
}
