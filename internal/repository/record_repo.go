package repository

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

// RecordRepo stores the audit documents behind the three modification endpoints
type RecordRepo interface {
	EnsureIndexes(ctx context.Context)
	SaveReschedule(ctx context.Context, rec *model.RescheduleRecord) error
	SaveCancellation(ctx context.Context, rec *model.CancellationRecord) error
	SaveReassignment(ctx context.Context, rec *model.ReassignmentRecord) error
}

type recordRepo struct {
	reschedules   *mongo.Collection
	cancellations *mongo.Collection
	reassignments *mongo.Collection
}

// NewRecordRepo creates a new audit record repository
func NewRecordRepo(db *mongo.Database) RecordRepo {
	return &recordRepo{
		reschedules:   db.Collection("session_reschedules"),
		cancellations: db.Collection("session_cancellations"),
		reassignments: db.Collection("instructor_reassignments"),
	}
}

func (r *recordRepo) EnsureIndexes(ctx context.Context) {
	for _, coll := range []*mongo.Collection{r.reschedules, r.cancellations, r.reassignments} {
		if err := createIndex(ctx, coll, bson.D{{Key: "tenantId", Value: 1}, {Key: "sessionId", Value: 1}}, false); err != nil {
			log.Printf("Warning: failed to create index on %s: %v", coll.Name(), err)
		}
		if err := createSparseUniqueIndex(ctx, coll, bson.D{{Key: "idempotencyKey", Value: 1}}); err != nil {
			log.Printf("Warning: failed to create index on %s: %v", coll.Name(), err)
		}
	}
	log.Println("Record indexes ensured")
}

func (r *recordRepo) SaveReschedule(ctx context.Context, rec *model.RescheduleRecord) error {
	_, err := r.reschedules.InsertOne(ctx, rec)
	return wrapWriteErr(err)
}

func (r *recordRepo) SaveCancellation(ctx context.Context, rec *model.CancellationRecord) error {
	_, err := r.cancellations.InsertOne(ctx, rec)
	return wrapWriteErr(err)
}

func (r *recordRepo) SaveReassignment(ctx context.Context, rec *model.ReassignmentRecord) error {
	_, err := r.reassignments.InsertOne(ctx, rec)
	return wrapWriteErr(err)
}
