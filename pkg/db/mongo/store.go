package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"guichet/pkg/model"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrVersionConflict = errors.New("document version conflict")
	ErrInvalidID       = errors.New("invalid document id")
)

// Collection wraps a mongo collection with optimistic-concurrency
// bookkeeping on the documents' version counter. Save is a
// compare-and-swap: the write lands only if the expected version still
// matches the persisted one, so concurrent writers coordinate without
// any lock manager.
type Collection[T any, PT interface {
	*T
	model.Document
}] struct {
	coll         *mongo.Collection
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewCollection[T any, PT interface {
	*T
	model.Document
}](db *mongo.Database, name string, readTimeout, writeTimeout time.Duration) *Collection[T, PT] {
	return &Collection[T, PT]{
		coll:         db.Collection(name),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// withTimeout wraps the context with a per-call timeout unless the
// caller's deadline is already tighter.
func (c *Collection[T, PT]) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Insert persists a new document, assigning its identity and starting
// the version counter at 1.
func (c *Collection[T, PT]) Insert(ctx context.Context, doc PT) error {
	ctx, cancel := c.withTimeout(ctx, c.writeTimeout)
	defer cancel()

	stampNew(doc.DocMeta())
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// InsertMany persists a batch of new documents. The batch is ordered;
// a failure mid-batch is reported as-is since callers validate the full
// batch before inserting and treat partial failure as fatal.
func (c *Collection[T, PT]) InsertMany(ctx context.Context, docs []PT) error {
	if len(docs) == 0 {
		return nil
	}

	ctx, cancel := c.withTimeout(ctx, c.writeTimeout)
	defer cancel()

	payload := make([]any, 0, len(docs))
	for _, doc := range docs {
		stampNew(doc.DocMeta())
		payload = append(payload, doc)
	}
	if _, err := c.coll.InsertMany(ctx, payload); err != nil {
		return fmt.Errorf("failed to insert document batch: %w", err)
	}
	return nil
}

func stampNew(meta *model.Meta) {
	if meta.ID == "" {
		meta.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	meta.Version = 1
	meta.CreatedAt = now
	meta.UpdatedAt = now
}

// Save writes the document only if expectedVersion still matches the
// persisted version. On success the stored version is expectedVersion+1
// and the document's meta reflects the new version and timestamp. On a
// mismatch nothing is written and ErrVersionConflict is returned; the
// caller reloads and retries its business operation.
func (c *Collection[T, PT]) Save(ctx context.Context, doc PT, expectedVersion int64) error {
	ctx, cancel := c.withTimeout(ctx, c.writeTimeout)
	defer cancel()

	meta := doc.DocMeta()
	if meta.ID == "" {
		return ErrInvalidID
	}

	prevVersion, prevUpdated := meta.Version, meta.UpdatedAt
	meta.Version = expectedVersion + 1
	meta.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"_id": meta.ID, "version": expectedVersion}
	res, err := c.coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		meta.Version, meta.UpdatedAt = prevVersion, prevUpdated
		return fmt.Errorf("failed to save document: %w", err)
	}
	if res.MatchedCount == 0 {
		meta.Version, meta.UpdatedAt = prevVersion, prevUpdated
		return c.classifyMiss(ctx, meta.ID)
	}
	return nil
}

// classifyMiss distinguishes a missing document from a version
// mismatch after a conditional write matched nothing.
func (c *Collection[T, PT]) classifyMiss(ctx context.Context, id string) error {
	n, err := c.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check document existence: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

// SaveUnchecked writes regardless of the persisted version,
// last-writer-wins. Intended for operator paths where a concurrent
// write is not business-relevant. The version still increments so
// optimistic readers observe the write.
func (c *Collection[T, PT]) SaveUnchecked(ctx context.Context, doc PT) error {
	ctx, cancel := c.withTimeout(ctx, c.writeTimeout)
	defer cancel()

	meta := doc.DocMeta()
	if meta.ID == "" {
		return ErrInvalidID
	}

	var current struct {
		Version int64 `bson:"version"`
	}
	err := c.coll.FindOne(ctx, bson.M{"_id": meta.ID},
		options.FindOne().SetProjection(bson.M{"version": 1})).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read document version: %w", err)
	}

	meta.Version = current.Version + 1
	meta.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := c.coll.ReplaceOne(ctx, bson.M{"_id": meta.ID}, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Get loads the document with the given ID.
func (c *Collection[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := c.withTimeout(ctx, c.readTimeout)
	defer cancel()

	var out T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(PT(&out))
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return PT(&out), nil
}

// Reload refetches the persisted state into doc, discarding any
// uncommitted local mutations. Used after a version conflict to retry
// against fresh data.
func (c *Collection[T, PT]) Reload(ctx context.Context, doc PT) error {
	fresh, err := c.Get(ctx, doc.DocMeta().ID)
	if err != nil {
		return err
	}
	*doc = *fresh
	return nil
}

// Find returns documents matching filter in the order requested by opts.
func (c *Collection[T, PT]) Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]PT, error) {
	ctx, cancel := c.withTimeout(ctx, c.readTimeout)
	defer cancel()

	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer cursor.Close(ctx)

	var results []PT
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return results, nil
}
