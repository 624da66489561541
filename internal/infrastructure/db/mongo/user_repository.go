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

	"github.com/quizlearn/data-gateway/internal/core/domain"
)

const usersCollection = "users"

// UserRepository persists user records in the users collection. The same
// collection stays reachable through the generic executor, which is how the
// frontend mutates gamification fields.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type userDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Email           string             `bson:"email"`
	Password        string             `bson:"password"`
	Name            string             `bson:"name"`
	Role            string             `bson:"role"`
	XP              int                `bson:"xp"`
	CurrentStreak   int                `bson:"current_streak"`
	LongestStreak   int                `bson:"longest_streak"`
	DailyXP         int                `bson:"daily_xp"`
	DailyXPGoal     int                `bson:"daily_xp_goal"`
	LastLoginDate   string             `bson:"last_login_date"`
	LastXPResetDate string             `bson:"last_xp_reset_date"`
	LastQuizDate    *string            `bson:"last_quiz_date"`
	CreatedAt       time.Time          `bson:"created_at"`
}

// Create inserts the user. Email uniqueness is enforced by the unique index
// (see EnsureIndexes); a duplicate key maps to domain.ErrUserExists, which
// closes the race two concurrent registrations would otherwise have.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	res, err := r.coll.InsertOne(ctx, toDoc(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return fromDoc(&doc), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return fromDoc(&doc), nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, date string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"last_login_date": date}})
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique email index registration depends on.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func toDoc(u *domain.User) *userDoc {
	return &userDoc{
		Email:           u.Email,
		Password:        u.PasswordHash,
		Name:            u.Name,
		Role:            u.Role,
		XP:              u.XP,
		CurrentStreak:   u.CurrentStreak,
		LongestStreak:   u.LongestStreak,
		DailyXP:         u.DailyXP,
		DailyXPGoal:     u.DailyXPGoal,
		LastLoginDate:   u.LastLoginDate,
		LastXPResetDate: u.LastXPResetDate,
		LastQuizDate:    u.LastQuizDate,
		CreatedAt:       u.CreatedAt,
	}
}

func fromDoc(d *userDoc) *domain.User {
	return &domain.User{
		ID:              d.ID.Hex(),
		Email:           d.Email,
		PasswordHash:    d.Password,
		Name:            d.Name,
		Role:            d.Role,
		XP:              d.XP,
		CurrentStreak:   d.CurrentStreak,
		LongestStreak:   d.LongestStreak,
		DailyXP:         d.DailyXP,
		DailyXPGoal:     d.DailyXPGoal,
		LastLoginDate:   d.LastLoginDate,
		LastXPResetDate: d.LastXPResetDate,
		LastQuizDate:    d.LastQuizDate,
		CreatedAt:       d.CreatedAt,
	}
}
