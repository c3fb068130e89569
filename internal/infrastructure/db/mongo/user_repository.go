package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

const usersCollection = "users"

// MongoUserRepository implements ports.UserRepository on MongoDB.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	Username     string            `bson:"username"`
	Email        string            `bson:"email"`
	PasswordHash string            `bson:"password_hash"`
	CreatedAt    time.Time         `bson:"created_at"`
	LastLogin    *time.Time        `bson:"last_login,omitempty"`
	Preferences  map[string]string `bson:"preferences"`
	Statistics   domain.Statistics `bson:"statistics"`
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	doc := mongoUser{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		LastLogin:    user.LastLogin,
		Preferences:  user.Preferences,
		Statistics:   user.Statistics,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The index name in the error tells us which uniqueness rule fired.
			if strings.Contains(err.Error(), "uniq_email") {
				return domain.ErrEmailTaken
			}
			return domain.ErrUserExists
		}
		return domain.StorageErrorf("insert user: %v", err)
	}
	return nil
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.StorageErrorf("find user: %v", err)
	}

	return &domain.User{
		Username:     mu.Username,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		CreatedAt:    mu.CreatedAt,
		LastLogin:    mu.LastLogin,
		Preferences:  mu.Preferences,
		Statistics:   mu.Statistics,
	}, nil
}

func (r *MongoUserRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	return r.updateOne(ctx, username, bson.M{"$set": bson.M{"last_login": at}})
}

func (r *MongoUserRepository) UpdatePreferences(ctx context.Context, username string, prefs map[string]string) error {
	set := bson.M{}
	for k, v := range prefs {
		set["preferences."+k] = v
	}
	return r.updateOne(ctx, username, bson.M{"$set": set})
}

func (r *MongoUserRepository) IncrementStatistic(ctx context.Context, username, kind string, delta int64) error {
	return r.updateOne(ctx, username, bson.M{"$inc": bson.M{"statistics." + kind: delta}})
}

func (r *MongoUserRepository) updateOne(ctx context.Context, username string, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"username": username}, update)
	if err != nil {
		return domain.StorageErrorf("update user: %v", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
