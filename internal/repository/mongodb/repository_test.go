package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/reliefops/relief-api/internal/domain/models"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func ns(mt *mtest.T, coll string) string {
	return mt.DB.Name() + "." + coll
}

func TestGetItem(t *testing.T) {
	mt := newMockT(t)

	mt.Run("found", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, itemsCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "ITM-RICE"},
			{Key: "disasterId", Value: "DIST-1"},
			{Key: "name", Value: "Rice"},
			{Key: "quantity", Value: 40},
		}))

		item, err := repo.GetItem(context.Background(), "DIST-1", "ITM-RICE")
		require.NoError(mt, err)
		require.NotNil(mt, item)
		assert.Equal(mt, 40, item.Quantity)
		assert.Equal(mt, "Rice", item.Name)

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		assert.Equal(mt, "DIST-1", filter.Lookup("disasterId").StringValue())
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, itemsCollection), mtest.FirstBatch))

		item, err := repo.GetItem(context.Background(), "DIST-1", "ITM-NONE")
		require.NoError(mt, err)
		assert.Nil(mt, item)
	})

	mt.Run("server_error", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad filter"}))

		_, err := repo.GetItem(context.Background(), "DIST-1", "ITM-RICE")
		assert.Error(mt, err)
	})
}

func TestFindActiveForItems_Filter(t *testing.T) {
	mt := newMockT(t)

	mt.Run("with_exclusion", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, reservationsCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "CDR-2"},
			{Key: "campId", Value: "CAMP-B"},
			{Key: "disasterId", Value: "DIST-1"},
			{Key: "status", Value: "approved"},
			{Key: "items", Value: bson.A{bson.D{{Key: "itemId", Value: "ITM-RICE"}, {Key: "quantity", Value: 15}}}},
		}))

		got, err := repo.FindActiveForItems(context.Background(), "DIST-1", []string{"ITM-RICE", "ITM-OIL"}, "CDR-1")
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, 15, got[0].QuantityOf("ITM-RICE"))

		evt := mt.GetStartedEvent()
		assert.Equal(mt, reservationsCollection, evt.Command.Lookup("find").StringValue())
		filter := evt.Command.Lookup("filter").Document()
		assert.Equal(mt, "CDR-1", filter.Lookup("_id", "$ne").StringValue())

		statuses, err := filter.Lookup("status", "$in").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, statuses, 2)
		assert.Equal(mt, "approved", statuses[0].StringValue())
		assert.Equal(mt, "arrived", statuses[1].StringValue())
	})

	mt.Run("without_exclusion", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, reservationsCollection), mtest.FirstBatch))

		got, err := repo.FindActive(context.Background(), "DIST-1", "ITM-RICE", "")
		require.NoError(mt, err)
		assert.Empty(mt, got)
		assert.NotNil(mt, got)

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		_, err = filter.LookupErr("_id")
		assert.Error(mt, err)
	})
}

func TestFindSupply_SortsByConfirmDate(t *testing.T) {
	mt := newMockT(t)

	mt.Run("query", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		eta := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, pledgesCollection), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "GDN-1"},
			{Key: "disasterId", Value: "DIST-1"},
			{Key: "status", Value: "confirmed"},
			{Key: "confirmDate", Value: eta},
			{Key: "items", Value: bson.A{bson.D{{Key: "itemId", Value: "ITM-RICE"}, {Key: "quantity", Value: 30}}}},
		}))

		got, err := repo.FindSupply(context.Background(), "DIST-1", "ITM-RICE")
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		require.NotNil(mt, got[0].ConfirmDate)
		assert.True(mt, eta.Equal(*got[0].ConfirmDate))

		evt := mt.GetStartedEvent()
		_, err = evt.Command.LookupErr("sort", "confirmDate")
		assert.NoError(mt, err)
		assert.Equal(mt, "ITM-RICE", evt.Command.Lookup("filter", "items.itemId").StringValue())
	})
}

func TestFindPledge_NotFound(t *testing.T) {
	mt := newMockT(t)

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, pledgesCollection), mtest.FirstBatch))

		_, err := repo.FindPledge(context.Background(), "DIST-1", "GDN-404")
		assert.ErrorIs(mt, err, models.ErrNotFound)
	})
}

func TestUpdatePledgeStatus(t *testing.T) {
	mt := newMockT(t)

	mt.Run("matched", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		eta := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
		require.NoError(mt, repo.UpdatePledgeStatus(context.Background(), "DIST-1", "GDN-1", models.PledgeConfirmed, &eta))

		evt := mt.GetStartedEvent()
		assert.Equal(mt, "update", evt.CommandName)
	})

	mt.Run("already_processed", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns(mt, pledgesCollection), mtest.FirstBatch, bson.D{
				{Key: "_id", Value: "GDN-1"},
				{Key: "disasterId", Value: "DIST-1"},
				{Key: "status", Value: "processed"},
			}),
		)

		err := repo.UpdatePledgeStatus(context.Background(), "DIST-1", "GDN-1", models.PledgeArrived, nil)
		assert.ErrorIs(mt, err, models.ErrConflict)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns(mt, pledgesCollection), mtest.FirstBatch),
		)

		err := repo.UpdatePledgeStatus(context.Background(), "DIST-1", "GDN-404", models.PledgeArrived, nil)
		assert.ErrorIs(mt, err, models.ErrNotFound)
		assert.NotErrorIs(mt, err, models.ErrConflict)
	})
}

type updateCall struct {
	collection string
	itemID     string
	inc        int64
}

// updateCalls drains the recorded update commands.
func updateCalls(mt *mtest.T) []updateCall {
	var calls []updateCall
	for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
		if evt.CommandName != "update" {
			continue
		}
		call := updateCall{collection: evt.Command.Lookup("update").StringValue()}
		stmts, err := evt.Command.Lookup("updates").Array().Values()
		require.NoError(mt, err)
		stmt := stmts[0].Document()
		call.itemID = stmt.Lookup("q", "_id").StringValue()
		if v, err := stmt.LookupErr("u", "$inc", "quantity"); err == nil {
			switch v.Type {
			case bsontype.Int32:
				call.inc = int64(v.Int32())
			case bsontype.Int64:
				call.inc = v.Int64()
			}
		}
		calls = append(calls, call)
	}
	return calls
}

func TestProcessPledge(t *testing.T) {
	mt := newMockT(t)
	pledge := models.Pledge{
		ID:         "GDN-1",
		DisasterID: "DIST-1",
		Status:     models.PledgeArrived,
		Items: []models.RequestedItem{
			{ItemID: "ITM-RICE", Quantity: 30},
			{ItemID: "ITM-OIL", Quantity: 4},
		},
	}
	processedAt := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	matched := mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1})
	unmatched := mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0})

	mt.Run("adds_quantities", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(matched, matched, matched)

		require.NoError(mt, repo.ProcessPledge(context.Background(), pledge, processedAt))

		assert.Equal(mt, []updateCall{
			{collection: pledgesCollection, itemID: "GDN-1"},
			{collection: itemsCollection, itemID: "ITM-RICE", inc: 30},
			{collection: itemsCollection, itemID: "ITM-OIL", inc: 4},
		}, updateCalls(mt))
	})

	mt.Run("already_processed", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(unmatched)

		err := repo.ProcessPledge(context.Background(), pledge, processedAt)
		assert.ErrorIs(mt, err, models.ErrConflict)
		assert.Len(mt, updateCalls(mt), 1)
	})

	mt.Run("increment_failure_rolls_back", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(
			matched,
			matched,
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad update"}),
			matched,
			matched,
		)

		err := repo.ProcessPledge(context.Background(), pledge, processedAt)
		require.Error(mt, err)
		assert.ErrorContains(mt, err, "item ITM-OIL")

		calls := updateCalls(mt)
		require.Len(mt, calls, 5)
		assert.Equal(mt, updateCall{collection: itemsCollection, itemID: "ITM-RICE", inc: -30}, calls[3])
		assert.Equal(mt, updateCall{collection: pledgesCollection, itemID: "GDN-1"}, calls[4])
	})

	mt.Run("missing_inventory_record_rolls_back", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(matched, unmatched, matched)

		err := repo.ProcessPledge(context.Background(), pledge, processedAt)
		assert.ErrorIs(mt, err, models.ErrConflict)
		assert.ErrorContains(mt, err, "ITM-RICE")

		calls := updateCalls(mt)
		require.Len(mt, calls, 3)
		assert.Equal(mt, updateCall{collection: pledgesCollection, itemID: "GDN-1"}, calls[2])
	})
}

func TestDeleteItems(t *testing.T) {
	mt := newMockT(t)

	mt.Run("deletes_by_id", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		require.NoError(mt, repo.DeleteItems(context.Background(), "DIST-1", []string{"ITM-1", "ITM-2"}))

		evt := mt.GetStartedEvent()
		assert.Equal(mt, "delete", evt.CommandName)
		assert.Equal(mt, itemsCollection, evt.Command.Lookup("delete").StringValue())
	})

	mt.Run("nothing_to_delete", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)

		require.NoError(mt, repo.DeleteItems(context.Background(), "DIST-1", nil))
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestRecordAPIMetric_Upserts(t *testing.T) {
	mt := newMockT(t)

	mt.Run("upsert", func(mt *mtest.T) {
		repo := NewWithDatabase(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))

		err := repo.RecordAPIMetric(context.Background(), models.APIMetric{
			Method:       "GET",
			EndpointName: "/getAvailableItems",
			StatusCode:   200,
			DurationMs:   12.5,
			CalledAt:     time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
			Env:          "test",
		})
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		assert.Equal(mt, metricsCollection, evt.Command.Lookup("update").StringValue())

		updates, err := evt.Command.Lookup("updates").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, updates, 1)
		stmt := updates[0].Document()
		assert.True(mt, stmt.Lookup("upsert").Boolean())
		assert.Equal(mt, "/getAvailableItems", stmt.Lookup("q", "endpointName").StringValue())
		assert.Equal(mt, "pass", stmt.Lookup("u", "$setOnInsert", "status").StringValue())
	})
}

func TestClose_WithoutClient(t *testing.T) {
	repo := NewWithDatabase(nil, nil)
	assert.NoError(t, repo.Close(context.Background()))
	assert.NoError(t, repo.Ping(context.Background()))
}
