package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/RoshiniVenkateswaran/Swapy-sub000/internal/models"
)

type categoryCount struct {
	Category string `bson:"_id"`
	Count    int    `bson:"count"`
}

var availableItems = bson.D{{Key: "$match", Value: bson.M{"status": string(models.ItemAvailable), "deleted_at": nil}}}

// GetCategoryStats считает спрос и предложение по доступным вещам агрегацией
func (s *Store) GetCategoryStats(ctx context.Context) (map[models.Category]models.CategoryStats, error) {
	supply, err := s.countBy(ctx, mongo.Pipeline{
		availableItems,
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}

	demand, err := s.countBy(ctx, mongo.Pipeline{
		availableItems,
		{{Key: "$unwind", Value: "$desired_categories"}},
		{{Key: "$group", Value: bson.M{"_id": "$desired_categories", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}

	stats := make(map[models.Category]models.CategoryStats)
	merge := func(counts []categoryCount, apply func(*models.CategoryStats, int)) {
		for _, c := range counts {
			category := models.Category(c.Category)
			if !category.Valid() {
				continue
			}
			entry := stats[category]
			entry.Category = category
			apply(&entry, c.Count)
			stats[category] = entry
		}
	}
	merge(supply, func(e *models.CategoryStats, n int) { e.Supply += n })
	merge(demand, func(e *models.CategoryStats, n int) { e.Demand += n })

	return stats, nil
}

func (s *Store) countBy(ctx context.Context, pipeline mongo.Pipeline) ([]categoryCount, error) {
	cursor, err := s.items.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapError(err, "")
	}
	defer cursor.Close(ctx)

	var counts []categoryCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, mapError(err, "")
	}
	return counts, nil
}
