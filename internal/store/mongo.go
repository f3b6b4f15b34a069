package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoConfig holds connection settings for the MongoDB-backed store.
type MongoConfig struct {
	URI      string
	Database string
	// OpTimeout bounds every store round trip. An operation that does not
	// return within it surfaces models.ErrStoreTimeout instead of hanging.
	OpTimeout time.Duration
}

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	client    *mongo.Client
	db        *mongo.Database
	opTimeout time.Duration
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	timeout := cfg.OpTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &MongoStore{
		client:    client,
		db:        client.Database(cfg.Database),
		opTimeout: timeout,
	}, nil
}

// Ping verifies backend reachability, for health checks.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Collection returns the named collection.
func (s *MongoStore) Collection(name string) Collection {
	return &mongoCollection{
		col:       s.db.Collection(name),
		name:      name,
		opTimeout: s.opTimeout,
	}
}

type mongoCollection struct {
	col       *mongo.Collection
	name      string
	opTimeout time.Duration
}

func (c *mongoCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	sortField := q.Sort.Field
	if sortField == "" {
		sortField = IDField
	}
	dir := 1
	if q.Sort.Desc {
		dir = -1
	}

	filter := predicateFilter(q.Predicates)
	if q.StartAfter != nil {
		filter = andFilters(filter, startAfterFilter(sortField, q.Sort.Desc, q.StartAfter))
	}

	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: dir}, {Key: IDField, Value: dir}})
	if q.Limit > 0 {
		opts = opts.SetLimit(int64(q.Limit))
	}
	if len(q.Projection) > 0 {
		proj := bson.D{{Key: IDField, Value: 1}}
		for _, f := range q.Projection {
			if f != IDField {
				proj = append(proj, bson.E{Key: f, Value: 1})
			}
		}
		opts = opts.SetProjection(proj)
	}

	cur, err := c.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, c.wrap("find", err)
	}
	defer cur.Close(ctx)

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, c.wrap("find", err)
	}

	docs := make([]Document, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, normalizeDoc(m))
	}
	return docs, nil
}

func (c *mongoCollection) Count(ctx context.Context, preds []Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	// The unfiltered total uses the collection-metadata estimate, which is the
	// backend's fast count and may lag recent writes.
	if len(preds) == 0 {
		n, err := c.col.EstimatedDocumentCount(ctx)
		if err != nil {
			return 0, c.wrap("count", err)
		}
		return n, nil
	}

	n, err := c.col.CountDocuments(ctx, predicateFilter(preds))
	if err != nil {
		return 0, c.wrap("count", err)
	}
	return n, nil
}

func (c *mongoCollection) Get(ctx context.Context, id string) (Document, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	var m bson.M
	if err := c.col.FindOne(ctx, bson.M{IDField: id}).Decode(&m); err != nil {
		return nil, c.wrap("get", err)
	}
	return normalizeDoc(m), nil
}

func (c *mongoCollection) Insert(ctx context.Context, id string, doc Document) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	insert := bson.M{IDField: id}
	for k, v := range doc {
		if k != IDField {
			insert[k] = v
		}
	}
	if _, err := c.col.InsertOne(ctx, insert); err != nil {
		return c.wrap("insert", err)
	}
	return nil
}

func (c *mongoCollection) Merge(ctx context.Context, id string, fields Document, upsert bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	set := bson.M{}
	for k, v := range fields {
		if k != IDField {
			set[k] = v
		}
	}

	res, err := c.col.UpdateOne(ctx, bson.M{IDField: id}, bson.M{"$set": set},
		options.UpdateOne().SetUpsert(upsert))
	if err != nil {
		return c.wrap("merge", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return fmt.Errorf("merge %s: %w", c.name, models.ErrNotFound)
	}
	return nil
}

func (c *mongoCollection) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	res, err := c.col.DeleteOne(ctx, bson.M{IDField: id})
	if err != nil {
		return c.wrap("delete", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s: %w", c.name, models.ErrNotFound)
	}
	return nil
}

// wrap maps driver errors onto the model error taxonomy and annotates them
// with the operation and collection, without leaking connection details.
func (c *mongoCollection) wrap(op string, err error) error {
	return fmt.Errorf("%s %s: %w", op, c.name, mapMongoError(err))
}

func mapMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err):
		return models.ErrStoreTimeout
	case mongo.IsNetworkError(err):
		return models.ErrStoreUnavailable
	case mongo.IsDuplicateKeyError(err):
		return models.ErrConflict
	}
	return err
}

// predicateFilter builds a bson filter, merging multiple operators on the
// same field (a two-sided range becomes one {$gte, $lt} clause).
func predicateFilter(preds []Predicate) bson.M {
	filter := bson.M{}
	for _, p := range preds {
		switch p.Op {
		case OpEq:
			filter[p.Field] = p.Value
		default:
			clause, ok := filter[p.Field].(bson.M)
			if !ok {
				clause = bson.M{}
				filter[p.Field] = clause
			}
			clause[mongoOp(p.Op)] = p.Value
		}
	}
	return filter
}

func mongoOp(op Op) string {
	switch op {
	case OpGt:
		return "$gt"
	case OpGte:
		return "$gte"
	case OpLt:
		return "$lt"
	case OpLte:
		return "$lte"
	}
	return "$eq"
}

// startAfterFilter expresses "continue after (key, id)" in the given sort
// direction: strictly past the key, or at the key with a later id.
//
// Null and missing sort keys need explicit branches. They sort before every
// concrete value, but $gt/$lt are type-bracketed and never match across the
// null/non-null boundary, so a bare past-the-key comparison would strand
// one side of it.
func startAfterFilter(sortField string, desc bool, cur *Cursor) bson.M {
	after, onTie := "$gt", "$gt"
	if desc {
		after, onTie = "$lt", "$lt"
	}
	if sortField == IDField {
		return bson.M{IDField: bson.M{after: cur.ID}}
	}

	tie := bson.M{sortField: cur.Key, IDField: bson.M{onTie: cur.ID}}

	if cur.Key == nil {
		if desc {
			// Nulls are the final run in descending order.
			return tie
		}
		return bson.M{"$or": bson.A{
			bson.M{sortField: bson.M{"$ne": nil}},
			tie,
		}}
	}

	if desc {
		// The null run still lies past every concrete key.
		return bson.M{"$or": bson.A{
			bson.M{sortField: bson.M{after: cur.Key}},
			bson.M{sortField: nil},
			tie,
		}}
	}
	return bson.M{"$or": bson.A{
		bson.M{sortField: bson.M{after: cur.Key}},
		tie,
	}}
}

func andFilters(a, b bson.M) bson.M {
	if len(a) == 0 {
		return b
	}
	return bson.M{"$and": bson.A{a, b}}
}

// normalizeDoc converts driver-decoded values into the Document scalar set.
func normalizeDoc(m bson.M) Document {
	doc := make(Document, len(m))
	for k, v := range m {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case bson.ObjectID:
		return t.Hex()
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case bson.A:
		out := make([]any, 0, len(t))
		for _, e := range t {
			out = append(out, normalizeValue(e))
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	}
	return v
}
