package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

const sessionsCollection = "sessions"

// MongoSessionRepository implements ports.SessionRepository on MongoDB.
// Expiry stays lazy even here: records are removed by the Session Authority
// when a Validate call observes the deadline, not by a TTL index, so that
// Validate remains the single arbiter of liveness.
type MongoSessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{coll: db.Collection(sessionsCollection)}
}

type mongoSession struct {
	Token      string    `bson:"token"`
	Username   string    `bson:"username"`
	CreatedAt  time.Time `bson:"created_at"`
	LastActive time.Time `bson:"last_active"`
	ExpiresAt  time.Time `bson:"expires_at"`
}

func (r *MongoSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	doc := mongoSession{
		Token:      session.Token,
		Username:   session.Username,
		CreatedAt:  session.CreatedAt,
		LastActive: session.LastActive,
		ExpiresAt:  session.ExpiresAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrTokenCollision
		}
		return domain.StorageErrorf("insert session: %v", err)
	}
	return nil
}

func (r *MongoSessionRepository) Find(ctx context.Context, token string) (*domain.Session, error) {
	var ms mongoSession
	if err := r.coll.FindOne(ctx, bson.M{"token": token}).Decode(&ms); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.StorageErrorf("find session: %v", err)
	}

	return &domain.Session{
		Token:      ms.Token,
		Username:   ms.Username,
		CreatedAt:  ms.CreatedAt,
		LastActive: ms.LastActive,
		ExpiresAt:  ms.ExpiresAt,
	}, nil
}

func (r *MongoSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"token": session.Token}, bson.M{"$set": bson.M{
		"last_active": session.LastActive,
	}})
	if err != nil {
		return domain.StorageErrorf("update session: %v", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *MongoSessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return domain.StorageErrorf("delete session: %v", err)
	}
	return nil
}
