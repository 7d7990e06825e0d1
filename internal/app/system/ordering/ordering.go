// Package ordering maintains the order_index field shared by chapters,
// lessons and exercises.
//
// New documents are appended at the end of their sibling list (index =
// current sibling count). After a delete or a move the remaining siblings
// are renumbered so the sequence stays dense: 0, 1, ..., n-1.
package ordering

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Field is the name of the ordering field in every ordered collection.
const Field = "order_index"

// Next returns the index a new sibling matching filter should receive.
func Next(ctx context.Context, c *mongo.Collection, filter bson.M) (int, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := c.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count siblings: %w", err)
	}
	return int(n), nil
}

// SortOpts sorts by order_index, breaking ties by _id so duplicates left by
// older data still list in a stable order.
func SortOpts() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: Field, Value: 1}, {Key: "_id", Value: 1}})
}

// Compact renumbers the documents matching filter to 0..n-1 in their
// current order. Only documents whose index changes are written.
func Compact(ctx context.Context, c *mongo.Collection, filter bson.M) error {
	if filter == nil {
		filter = bson.M{}
	}
	opts := SortOpts().SetProjection(bson.M{"_id": 1, Field: 1})
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("list siblings: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Index int                `bson:"order_index"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return fmt.Errorf("decode siblings: %w", err)
	}

	var writes []mongo.WriteModel
	for i, row := range rows {
		if row.Index == i {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": row.ID}).
			SetUpdate(bson.M{"$set": bson.M{Field: i}}))
	}
	if len(writes) == 0 {
		return nil
	}
	if _, err := c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("renumber siblings: %w", err)
	}
	return nil
}
