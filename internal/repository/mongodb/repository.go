package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/posgate/internal/domain/models"
)

// ErrSessionNotFound indicates no stored session matches the token.
var ErrSessionNotFound = errors.New("session not found")

// Repository defines the persistence operations the gateway needs locally:
// terminal sessions and the daily report archive.
type Repository interface {
	SaveSession(ctx context.Context, session models.Session) error
	FindSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	ListSessions(ctx context.Context) ([]models.Session, error)

	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client       *mongo.Client
	dbName       string
	sessionsColl string
	reportsColl  string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:       client,
		dbName:       dbName,
		sessionsColl: "sessions",
		reportsColl:  "daily_reports",
	}, nil
}

// SaveSession upserts the session keyed by its token.
func (r *MongoDBRepository) SaveSession(ctx context.Context, session models.Session) error {
	coll := r.client.Database(r.dbName).Collection(r.sessionsColl)
	opts := options.Replace().SetUpsert(true)

	if _, err := coll.ReplaceOne(ctx, bson.M{"_id": session.Token}, session, opts); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FindSession loads the session stored under the token.
func (r *MongoDBRepository) FindSession(ctx context.Context, token string) (*models.Session, error) {
	coll := r.client.Database(r.dbName).Collection(r.sessionsColl)

	var session models.Session
	err := coll.FindOne(ctx, bson.M{"_id": token}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return &session, nil
}

// DeleteSession removes the session; deleting an absent token is not an error.
func (r *MongoDBRepository) DeleteSession(ctx context.Context, token string) error {
	coll := r.client.Database(r.dbName).Collection(r.sessionsColl)

	if _, err := coll.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions returns every stored session, used to rehydrate on startup.
func (r *MongoDBRepository) ListSessions(ctx context.Context) ([]models.Session, error) {
	coll := r.client.Database(r.dbName).Collection(r.sessionsColl)

	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var sessions []models.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, nil
}

// SaveDailyReport archives an end-of-day summary.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	coll := r.client.Database(r.dbName).Collection(r.reportsColl)

	if _, err := coll.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
