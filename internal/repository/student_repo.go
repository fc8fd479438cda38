package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

// StudentRepo reads student contact details
type StudentRepo interface {
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]*model.Student, error)
	Upsert(ctx context.Context, student *model.Student) error
}

type studentRepo struct {
	collection *mongo.Collection
}

// NewStudentRepo creates a new student repository
func NewStudentRepo(db *mongo.Database) StudentRepo {
	return &studentRepo{
		collection: db.Collection("students"),
	}
}

func (r *studentRepo) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]*model.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID, "_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var students []*model.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) Upsert(ctx context.Context, student *model.Student) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": student.ID}, student, opts)
	return err
}
