package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reliefops/relief-api/internal/domain/models"
	"github.com/reliefops/relief-api/pkg/idgen"
)

// RecordAPIMetric folds one call into the per endpoint/status/env aggregate.
func (r *MongoDBRepository) RecordAPIMetric(ctx context.Context, metric models.APIMetric) error {
	status := "fail"
	if metric.Passed() {
		status = "pass"
	}

	filter := bson.D{
		{Key: "endpointName", Value: metric.EndpointName},
		{Key: "statusCode", Value: metric.StatusCode},
		{Key: "env", Value: metric.Env},
	}
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "count", Value: 1}}},
		{Key: "$push", Value: bson.D{{Key: "timeRequired", Value: metric.DurationMs}}},
		{Key: "$set", Value: bson.D{{Key: "lastCalledAt", Value: metric.CalledAt}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "_id", Value: idgen.New("API")},
			{Key: "method", Value: metric.Method},
			{Key: "status", Value: status},
			{Key: "calledAt", Value: metric.CalledAt},
		}},
	}

	_, err := r.collection(metricsCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert api metric %s: %w", metric.EndpointName, err)
	}
	return nil
}
