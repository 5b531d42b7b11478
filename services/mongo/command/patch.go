package command

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PatchOutcome classifies a single-document patch. Callers never inspect the
// driver's update counters directly, only this tri-state result.
type PatchOutcome int

const (
	PatchApplied PatchOutcome = iota
	PatchNoSuchRecord
	PatchConflict
)

// mongod reports WriteConflict with code 112 when a transactional write loses
// against a concurrent one.
const writeConflictCode = 112

func IsWriteConflict(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasErrorCode(writeConflictCode) {
		return true
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == writeConflictCode {
				return true
			}
		}
	}
	return false
}

// PatchOne applies an update to the single document matching filter. A filter
// that matches nothing yields PatchNoSuchRecord, a concurrent-write conflict
// yields PatchConflict together with the driver error.
func PatchOne(ctx context.Context, collection *mongo.Collection, filter bson.M, update bson.M) (PatchOutcome, error) {
	res, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if IsWriteConflict(err) {
			return PatchConflict, err
		}
		return PatchNoSuchRecord, err
	}
	if res.MatchedCount == 0 {
		return PatchNoSuchRecord, nil
	}
	return PatchApplied, nil
}

// PatchMany applies an update to every document matching filter and returns
// the number of modified documents.
func PatchMany(ctx context.Context, collection *mongo.Collection, filter bson.M, update bson.M) (int64, error) {
	res, err := collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
