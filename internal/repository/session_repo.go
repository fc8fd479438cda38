package repository

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

// SessionRepo handles MongoDB operations for schedule sessions
type SessionRepo interface {
	EnsureIndexes(ctx context.Context)
	Create(ctx context.Context, session *model.ScheduleSession) error
	GetByID(ctx context.Context, tenantID, id string) (*model.ScheduleSession, error)
	List(ctx context.Context, filter model.SessionFilter) ([]*model.ScheduleSession, error)
	ListByInstructorDay(ctx context.Context, tenantID, instructorID string, day time.Time) ([]*model.ScheduleSession, error)
	ListByRoot(ctx context.Context, tenantID, rootID string) ([]*model.ScheduleSession, error)
	ListScheduledOn(ctx context.Context, day time.Time) ([]*model.ScheduleSession, error)

	// Supersede replaces a session only if its stored version still equals
	// expectedVersion, bumping the version on success.
	Supersede(ctx context.Context, session *model.ScheduleSession, expectedVersion int64) error
	// MarkNotified flags the entry as delivered and bumps the version so a
	// writer holding the pre-mark document cannot replace it.
	MarkNotified(ctx context.Context, tenantID string, sessionIDs []string, entryID string) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("schedule_sessions"),
	}
}

func (r *sessionRepo) EnsureIndexes(ctx context.Context) {
	indexes := []bson.D{
		{{Key: "tenantId", Value: 1}, {Key: "instructorId", Value: 1}, {Key: "date", Value: 1}},
		{{Key: "tenantId", Value: 1}, {Key: "parentSessionId", Value: 1}},
		{{Key: "date", Value: 1}, {Key: "status", Value: 1}},
	}
	for _, keys := range indexes {
		if err := createIndex(ctx, r.collection, keys, false); err != nil {
			log.Printf("Warning: failed to create index on %s: %v", r.collection.Name(), err)
		}
	}
	log.Println("Session indexes ensured")
}

func (r *sessionRepo) Create(ctx context.Context, session *model.ScheduleSession) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.SessionHistory == nil {
		session.SessionHistory = []model.ModificationEntry{}
	}

	_, err := r.collection.InsertOne(ctx, session)
	return wrapWriteErr(err)
}

func (r *sessionRepo) GetByID(ctx context.Context, tenantID, id string) (*model.ScheduleSession, error) {
	var session model.ScheduleSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "tenantId": tenantID}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) List(ctx context.Context, filter model.SessionFilter) ([]*model.ScheduleSession, error) {
	q := bson.M{"tenantId": filter.TenantID}
	if filter.InstructorID != "" {
		q["instructorId"] = filter.InstructorID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.From != nil || filter.To != nil {
		dateQ := bson.M{}
		if filter.From != nil {
			dateQ["$gte"] = *filter.From
		}
		if filter.To != nil {
			dateQ["$lte"] = *filter.To
		}
		q["date"] = dateQ
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	return r.find(ctx, q, opts)
}

func (r *sessionRepo) ListByInstructorDay(ctx context.Context, tenantID, instructorID string, day time.Time) ([]*model.ScheduleSession, error) {
	start := DayStart(day)
	return r.find(ctx, bson.M{
		"tenantId":     tenantID,
		"instructorId": instructorID,
		"date":         bson.M{"$gte": start, "$lt": start.Add(24 * time.Hour)},
	})
}

func (r *sessionRepo) ListByRoot(ctx context.Context, tenantID, rootID string) ([]*model.ScheduleSession, error) {
	return r.find(ctx, bson.M{
		"tenantId": tenantID,
		"$or": bson.A{
			bson.M{"_id": rootID},
			bson.M{"parentSessionId": rootID},
		},
	})
}

func (r *sessionRepo) ListScheduledOn(ctx context.Context, day time.Time) ([]*model.ScheduleSession, error) {
	start := DayStart(day)
	return r.find(ctx, bson.M{
		"date":        bson.M{"$gte": start, "$lt": start.Add(24 * time.Hour)},
		"status":      bson.M{"$ne": model.SessionCancelled},
		"isCancelled": bson.M{"$ne": true},
	})
}

func (r *sessionRepo) Supersede(ctx context.Context, session *model.ScheduleSession, expectedVersion int64) error {
	session.Version = expectedVersion + 1
	res, err := r.collection.ReplaceOne(ctx, bson.M{
		"_id":      session.ID,
		"tenantId": session.TenantID,
		"version":  expectedVersion,
	}, session)
	if err != nil {
		session.Version = expectedVersion
		return err
	}
	if res.MatchedCount == 0 {
		session.Version = expectedVersion
		return ErrConcurrentModification
	}
	return nil
}

func (r *sessionRepo) MarkNotified(ctx context.Context, tenantID string, sessionIDs []string, entryID string) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"e.id": entryID}},
	})
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": sessionIDs}, "tenantId": tenantID, "sessionHistory.id": entryID},
		bson.M{
			"$set": bson.M{"sessionHistory.$[e].notificationsSent": true},
			"$inc": bson.M{"version": 1},
		},
		opts,
	)
	return err
}

func (r *sessionRepo) find(ctx context.Context, q bson.M, opts ...*options.FindOptions) ([]*model.ScheduleSession, error) {
	cursor, err := r.collection.Find(ctx, q, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.ScheduleSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DayStart truncates t to midnight UTC of its own calendar date
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
