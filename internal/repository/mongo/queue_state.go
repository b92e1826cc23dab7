package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"queuedremove/internal/domain"
)

const queueStateID = "queuedremove"

type queueStateDoc struct {
	ID              string     `bson:"_id"`
	RemoveThreshold int64      `bson:"removeThreshold"`
	StopThreshold   int64      `bson:"stopThreshold"`
	Queue           [][]string `bson:"rq"`
	UpdatedAt       int64      `bson:"updatedAt"`
}

// QueueStateRepository stores the whole queue state as one document, so a
// save is a single upsert and load→save round-trips group order and
// membership exactly.
type QueueStateRepository struct {
	collection *mongo.Collection
}

func NewQueueStateRepository(client *mongo.Client, dbName string) *QueueStateRepository {
	return &QueueStateRepository{collection: client.Database(dbName).Collection("queue_state")}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *QueueStateRepository) Load(ctx context.Context) (domain.QueueState, bool, error) {
	var doc queueStateDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": queueStateID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.QueueState{}, false, nil
		}
		return domain.QueueState{}, false, err
	}
	return fromDoc(doc), true, nil
}

func (r *QueueStateRepository) Save(ctx context.Context, state domain.QueueState) error {
	doc := toDoc(state)
	update := bson.M{
		"$set": bson.M{
			"removeThreshold": doc.RemoveThreshold,
			"stopThreshold":   doc.StopThreshold,
			"rq":              doc.Queue,
			"updatedAt":       time.Now().Unix(),
		},
	}
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": queueStateID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

func toDoc(state domain.QueueState) queueStateDoc {
	groups := make([][]string, 0, len(state.Queue))
	for _, group := range state.Queue {
		ids := make([]string, 0, len(group))
		for _, id := range group {
			ids = append(ids, string(id))
		}
		groups = append(groups, ids)
	}
	return queueStateDoc{
		ID:              queueStateID,
		RemoveThreshold: state.Config.RemoveThresholdBytes,
		StopThreshold:   state.Config.StopThresholdBytes,
		Queue:           groups,
	}
}

func fromDoc(doc queueStateDoc) domain.QueueState {
	queue := make(domain.RemoveQueue, 0, len(doc.Queue))
	for _, group := range doc.Queue {
		ids := make([]domain.TorrentID, 0, len(group))
		for _, id := range group {
			ids = append(ids, domain.TorrentID(id))
		}
		queue = append(queue, ids)
	}
	return domain.QueueState{
		Config: domain.QueueConfig{
			RemoveThresholdBytes: doc.RemoveThreshold,
			StopThresholdBytes:   doc.StopThreshold,
		},
		Queue: queue,
	}
}
