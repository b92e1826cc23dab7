package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"queuedremove/internal/domain"
)

const torrentsCollection = "torrents"

type torrentDoc struct {
	ID      string    `bson:"_id"`
	Name    string    `bson:"name"`
	Magnet  string    `bson:"magnet"`
	AddedAt time.Time `bson:"addedAt"`
}

// TorrentStore persists the torrents registered with the host so they can be
// re-added after a restart.
type TorrentStore struct {
	collection *mongo.Collection
}

func NewTorrentStore(client *mongo.Client, dbName string) *TorrentStore {
	return &TorrentStore{
		collection: client.Database(dbName).Collection(torrentsCollection),
	}
}

func (s *TorrentStore) Create(ctx context.Context, record domain.TorrentRecord) error {
	doc := torrentDoc{
		ID:      string(record.ID),
		Name:    record.Name,
		Magnet:  record.Magnet,
		AddedAt: record.AddedAt,
	}
	_, err := s.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (s *TorrentStore) List(ctx context.Context) ([]domain.TorrentRecord, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.TorrentRecord
	for cursor.Next(ctx) {
		var doc torrentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, domain.TorrentRecord{
			ID:      domain.TorrentID(doc.ID),
			Name:    doc.Name,
			Magnet:  doc.Magnet,
			AddedAt: doc.AddedAt,
		})
	}
	return records, cursor.Err()
}

func (s *TorrentStore) Delete(ctx context.Context, id domain.TorrentID) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
