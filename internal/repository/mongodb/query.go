package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/reliefops/relief-api/internal/domain/models"
)

func bsonKeys(fields ...string) bson.D {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return keys
}

func reservationStatuses(statuses []models.ReservationStatus) bson.A {
	out := make(bson.A, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func pledgeStatuses(statuses []models.PledgeStatus) bson.A {
	out := make(bson.A, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
