package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	qerrors "github.com/qforge/qtopo/pkg/errors"
	"github.com/qforge/qtopo/pkg/snapshot"
)

// MongoStore persists topologies and users in MongoDB. Snapshots are
// stored as their canonical JSON payload next to the queryable identity
// fields, so the document schema never chases the snapshot format.
type MongoStore struct {
	client     *mongo.Client
	topologies *mongo.Collection
	users      *mongo.Collection
}

type topologyDoc struct {
	PK      string `bson:"_id"`
	WorldID string `bson:"world_id"`
	Name    string `bson:"name,omitempty"`
	Payload []byte `bson:"payload"`
}

type userDoc struct {
	ID        string    `bson:"_id"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodePersistence, err, "connect to mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, qerrors.Wrap(qerrors.ErrCodePersistence, err, "ping mongodb")
	}

	db := client.Database(database)
	return &MongoStore{
		client:     client,
		topologies: db.Collection("topologies"),
		users:      db.Collection("users"),
	}, nil
}

func (s *MongoStore) PutTopology(ctx context.Context, snap *snapshot.Snapshot) (*snapshot.Snapshot, error) {
	stored := *snap
	if stored.PK == "" {
		stored.PK = uuid.NewString()
	}
	if stored.WorldID == "" {
		stored.WorldID = uuid.NewString()
	}

	payload, err := snapshot.Marshal(&stored)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodePersistence, err, "encode topology")
	}

	doc := topologyDoc{PK: stored.PK, WorldID: stored.WorldID, Name: stored.Name, Payload: payload}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.topologies.ReplaceOne(ctx, bson.M{"_id": stored.PK}, doc, opts); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodePersistence, err, "store topology")
	}
	return &stored, nil
}

func (s *MongoStore) GetTopology(ctx context.Context, pk string) (*snapshot.Snapshot, error) {
	var doc topologyDoc
	err := s.topologies.FindOne(ctx, bson.M{"_id": pk}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, qerrors.New(qerrors.ErrCodeNotFound, "topology %s not found", pk)
	}
	if err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodePersistence, err, "load topology")
	}

	var snap snapshot.Snapshot
	if err := json.Unmarshal(doc.Payload, &snap); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodePersistence, err, "decode topology")
	}
	return &snap, nil
}

func (s *MongoStore) ListTopologies(ctx context.Context) ([]snapshot.Summary, error) {
	opts := options.Find().SetProjection(bson.M{"payload": 0})
	cursor, err := s.topologies.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodePersistence, err, "list topologies")
	}
	defer cursor.Close(ctx)

	var out []snapshot.Summary
	for cursor.Next(ctx) {
		var doc topologyDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, qerrors.Wrap(qerrors.ErrCodePersistence, err, "decode listing")
		}
		out = append(out, snapshot.Summary{PK: doc.PK, Name: doc.Name, WorldID: doc.WorldID})
	}
	if err := cursor.Err(); err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodePersistence, err, "list topologies")
	}
	return out, nil
}

func (s *MongoStore) PutUser(ctx context.Context, id string) error {
	doc := userDoc{ID: id, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.users.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return qerrors.Wrap(qerrors.ErrCodePersistence, err, "store user")
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
