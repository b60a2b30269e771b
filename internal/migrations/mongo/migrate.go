package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"guichet/internal/booking/repository"
	"guichet/internal/migrations/mongo/validators"
)

var (
	SlotIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "site_id", Value: 1},
			{Key: "reserved", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "case_ref.kind", Value: 1},
			{Key: "case_ref.id", Value: 1},
		}},
	}

	SiteIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}}},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	AlertIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "site_id", Value: 1},
			{Key: "kind", Value: 1},
			{Key: "created_at", Value: -1},
		}},
	}
)

func RunMigration(ctx context.Context, db *mongo.Database) error {
	fmt.Printf("🚀 Running Mongo migrations on database: %s\n", db.Name())

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		repository.SlotCollection: {
			Indexes:   SlotIndexes,
			Validator: validators.SlotValidator,
		},
		repository.SiteCollection: {
			Indexes:   SiteIndexes,
			Validator: validators.SiteValidator,
		},
		repository.AlertCollection: {
			Indexes:   AlertIndexes,
			Validator: validators.AlertValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
