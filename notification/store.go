package notification

import (
	"context"
	"encoding/json"

	"github.com/ariebrainware/physiofriend-api/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LogStore persists dispatch records.
type LogStore interface {
	Save(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// GormStore keeps records in the notification_logs table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Save(ctx context.Context, rec Record) error {
	attempts, err := json.Marshal(rec.Attempts)
	if err != nil {
		return err
	}
	row := model.NotificationLog{
		AppointmentID: rec.AppointmentID,
		Recipient:     rec.Recipient,
		Channel:       rec.Channel,
		Outcome:       string(rec.Outcome),
		Delivered:     rec.Delivered,
		Message:       rec.Message,
		DeepLinkURL:   rec.DeepLinkURL,
		Attempts:      datatypes.JSON(attempts),
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *GormStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	var rows []model.NotificationLog
	if err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Record{
			AppointmentID: row.AppointmentID,
			Recipient:     row.Recipient,
			Channel:       row.Channel,
			Outcome:       Outcome(row.Outcome),
			Delivered:     row.Delivered,
			Message:       row.Message,
			DeepLinkURL:   row.DeepLinkURL,
			CreatedAt:     row.CreatedAt,
		}
		if len(row.Attempts) > 0 {
			if err := json.Unmarshal(row.Attempts, &rec.Attempts); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Save(ctx context.Context, rec Record) error {
	_, err := s.coll.InsertOne(ctx, rec)
	return err
}

func (s *MongoStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Record{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
