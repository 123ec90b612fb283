package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkonrad/wikiharvest/internal/types"
)

// MongoStore writes article records to a MongoDB collection and the run
// summary to a sibling <collection>_runs collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	runs       *mongo.Collection
	count      int
	logger     *slog.Logger
}

// NewMongoStore connects to MongoDB and returns a store.
func NewMongoStore(uri, database, collection string, logger *slog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client:     client,
		collection: db.Collection(collection),
		runs:       db.Collection(collection + "_runs"),
		logger:     logger.With("component", "mongo_store"),
	}, nil
}

func (s *MongoStore) Name() string { return "mongodb" }

func (s *MongoStore) Persist(ctx context.Context, rec *types.ArticleRecord) error {
	insertCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertOne(insertCtx, recordDoc(rec)); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("mongodb insert: %w", err)}
	}

	s.count++
	s.logger.Debug("record stored in mongodb", "keyword", rec.Keyword, "total", s.count)
	return nil
}

func (s *MongoStore) Finalize(ctx context.Context, records []*types.ArticleRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]bson.D, 0, len(records))
	for _, rec := range records {
		row := types.NewSummaryRow(rec)
		rows = append(rows, bson.D{
			{Key: "keyword", Value: row.Keyword},
			{Key: "title", Value: row.Title},
			{Key: "url", Value: row.URL},
			{Key: "summary", Value: row.Summary},
		})
	}

	insertCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	doc := bson.D{
		{Key: "finished_at", Value: time.Now().UTC()},
		{Key: "article_count", Value: len(records)},
		{Key: "articles", Value: rows},
	}
	if _, err := s.runs.InsertOne(insertCtx, doc); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("mongodb insert run summary: %w", err)}
	}
	return nil
}

func (s *MongoStore) Close() error {
	s.logger.Info("mongodb store closing", "total_records", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// recordDoc converts a record to a bson document, keeping infobox and
// section key order via bson.D.
func recordDoc(rec *types.ArticleRecord) bson.D {
	return bson.D{
		{Key: "keyword", Value: rec.Keyword},
		{Key: "title", Value: rec.Title},
		{Key: "url", Value: rec.URL},
		{Key: "summary", Value: rec.Summary},
		{Key: "infobox", Value: orderedDoc(rec.Infobox)},
		{Key: "sections", Value: orderedDoc(rec.Sections)},
		{Key: "references", Value: rec.References},
		{Key: "links", Value: rec.Links},
		{Key: "images", Value: rec.Images},
		{Key: "scraped_at", Value: time.Now().UTC()},
	}
}

func orderedDoc(m *types.OrderedMap) bson.D {
	doc := bson.D{}
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		doc = append(doc, bson.E{Key: k, Value: v})
	}
	return doc
}
