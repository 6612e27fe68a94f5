package mongostore

import (
	"regexp"

	"github.com/bitesplus/bites-plus-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// compileFind turns a resolved query into a find filter and options.
func compileFind(q models.ListingQuery) (bson.D, *options.FindOptions) {
	opts := options.Find().SetProjection(bson.D{{Key: "foodQuantityValue", Value: 0}})

	switch q.Mode {
	case models.QueryFeatured:
		// Documents without a rank sort after every ranked one.
		opts.SetSort(bson.D{{Key: "foodQuantityValue", Value: -1}, {Key: "_id", Value: 1}})
		if q.Limit > 0 {
			opts.SetLimit(int64(q.Limit))
		}
		return bson.D{{Key: "foodStatus", Value: string(models.StatusAvailable)}}, opts
	case models.QueryDonor:
		return bson.D{{Key: "donatorEmail", Value: q.Email}}, opts
	case models.QueryRequester:
		return bson.D{{Key: "requesterEmail", Value: q.Email}}, opts
	}

	filter := bson.D{{Key: "foodStatus", Value: string(models.StatusAvailable)}}
	if q.Search != "" {
		filter = append(filter, bson.E{Key: "foodName", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(q.Search)},
			{Key: "$options", Value: "i"},
		}})
	}
	if q.ExpireSort != 0 {
		opts.SetSort(bson.D{{Key: "expireDate", Value: q.ExpireSort}, {Key: "_id", Value: 1}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return filter, opts
}

func requestUpdate(req models.RequestFields) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "foodStatus", Value: string(models.StatusRequested)},
		{Key: "requesterEmail", Value: req.RequesterEmail},
		{Key: "requestDate", Value: req.RequestDate},
		{Key: "requesterNote", Value: req.RequesterNote},
	}}}
}

func cancelUpdate() bson.D {
	return bson.D{
		{Key: "$unset", Value: bson.D{
			{Key: "requestDate", Value: ""},
			{Key: "requesterEmail", Value: ""},
			{Key: "requesterNote", Value: ""},
		}},
		{Key: "$set", Value: bson.D{{Key: "foodStatus", Value: string(models.StatusAvailable)}}},
	}
}

// patchUpdate builds the $set / $unset document for a donor edit, with keys
// in a fixed order.
func patchUpdate(patch models.ListingPatch) bson.D {
	fields := patch.Fields()
	set := bson.D{}
	for _, key := range patchFieldOrder {
		if v, ok := fields[key]; ok {
			set = append(set, bson.E{Key: key, Value: v})
		}
	}
	update := bson.D{}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if patch.ClearQuantityValue {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "foodQuantityValue", Value: ""}}})
	}
	return update
}

var patchFieldOrder = []string{
	"foodName", "foodImage", "foodQuantity", "foodQuantityValue", "pickupLocation",
	"expireDate", "additionalNotes", "donatorName", "donatorPhotoURL",
}

// missingQuantityValue matches documents written without the numeric rank,
// including those stored before the rank existed.
func missingQuantityValue() bson.D {
	return bson.D{{Key: "foodQuantityValue", Value: bson.D{{Key: "$exists", Value: false}}}}
}

// quantityBackfill is an update pipeline deriving foodQuantityValue from
// foodQuantity, which may be text or a number. Unparsable quantities leave
// the field unset so they rank last.
func quantityBackfill() mongo.Pipeline {
	match := bson.D{{Key: "$regexFind", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$toString", Value: "$foodQuantity"}}},
		{Key: "regex", Value: models.QuantityPattern},
	}}}
	value := bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$$m.captures", 0}}}},
		{Key: "to", Value: "double"},
		{Key: "onError", Value: "$$REMOVE"},
		{Key: "onNull", Value: "$$REMOVE"},
	}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "foodQuantityValue", Value: bson.D{{Key: "$let", Value: bson.D{
			{Key: "vars", Value: bson.D{{Key: "m", Value: match}}},
			{Key: "in", Value: value},
		}}}}}}},
	}
}
