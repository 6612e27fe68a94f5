package mongostore

import (
	"testing"

	"github.com/bitesplus/bites-plus-server/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCompileFindFeatured(t *testing.T) {
	filter, opts := compileFind(models.ListingQuery{Mode: models.QueryFeatured, Limit: 6})

	assert.Equal(t, bson.D{{Key: "foodStatus", Value: "Available"}}, filter)
	assert.Equal(t, bson.D{{Key: "foodQuantityValue", Value: -1}, {Key: "_id", Value: 1}}, opts.Sort)
	if assert.NotNil(t, opts.Limit) {
		assert.Equal(t, int64(6), *opts.Limit)
	}
	assert.Equal(t, bson.D{{Key: "foodQuantityValue", Value: 0}}, opts.Projection)
}

func TestCompileFindBrowseEscapesSearch(t *testing.T) {
	filter, opts := compileFind(models.ListingQuery{Mode: models.QueryBrowse, Search: "rice (brown)", ExpireSort: 1})

	assert.Equal(t, bson.D{
		{Key: "foodStatus", Value: "Available"},
		{Key: "foodName", Value: bson.D{
			{Key: "$regex", Value: `rice \(brown\)`},
			{Key: "$options", Value: "i"},
		}},
	}, filter)
	assert.Equal(t, bson.D{{Key: "expireDate", Value: 1}, {Key: "_id", Value: 1}}, opts.Sort)
	assert.Nil(t, opts.Limit)
}

func TestCompileFindBrowseWithoutSort(t *testing.T) {
	filter, opts := compileFind(models.ListingQuery{Mode: models.QueryBrowse})
	assert.Equal(t, bson.D{{Key: "foodStatus", Value: "Available"}}, filter)
	assert.Nil(t, opts.Sort)
}

func TestCompileFindOwned(t *testing.T) {
	filter, _ := compileFind(models.ListingQuery{Mode: models.QueryDonor, Email: "d@x.com"})
	assert.Equal(t, bson.D{{Key: "donatorEmail", Value: "d@x.com"}}, filter)

	filter, _ = compileFind(models.ListingQuery{Mode: models.QueryRequester, Email: "r@x.com"})
	assert.Equal(t, bson.D{{Key: "requesterEmail", Value: "r@x.com"}}, filter)
}

func TestPatchUpdate(t *testing.T) {
	name, quantity := "Bread", "a loaf"
	update := patchUpdate(models.ListingPatch{FoodName: &name, FoodQuantity: &quantity, ClearQuantityValue: true})

	assert.Equal(t, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "foodName", Value: "Bread"},
			{Key: "foodQuantity", Value: "a loaf"},
		}},
		{Key: "$unset", Value: bson.D{{Key: "foodQuantityValue", Value: ""}}},
	}, update)

	assert.Empty(t, patchUpdate(models.ListingPatch{}))
}

func TestCancelUpdateRemovesRequesterFields(t *testing.T) {
	update := cancelUpdate()
	assert.Equal(t, "$unset", update[0].Key)
	assert.Len(t, update[0].Value, 3)
	assert.Equal(t, bson.D{{Key: "foodStatus", Value: "Available"}}, update[1].Value)
}

func TestRawTextAcceptsLegacyNumbers(t *testing.T) {
	for _, tc := range []struct {
		doc  bson.D
		want string
	}{
		{bson.D{{Key: "q", Value: "3kg"}}, "3kg"},
		{bson.D{{Key: "q", Value: 2.5}}, "2.5"},
		{bson.D{{Key: "q", Value: int32(4)}}, "4"},
		{bson.D{{Key: "q", Value: int64(12)}}, "12"},
	} {
		raw, err := bson.Marshal(tc.doc)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, rawText(bson.Raw(raw).Lookup("q")))
	}
}

func TestQuantityBackfillPipeline(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "foodQuantityValue", Value: bson.D{{Key: "$exists", Value: false}}}}, missingQuantityValue())

	pipeline := quantityBackfill()
	assert.Len(t, pipeline, 1)

	raw, err := bson.MarshalExtJSON(pipeline[0], false, false)
	assert.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, `"$toString":"$foodQuantity"`)
	assert.Contains(t, text, `"to":"double"`)
	assert.Contains(t, text, `"onError":"$$REMOVE"`)
	assert.Contains(t, text, `"onNull":"$$REMOVE"`)

	// The stored pattern is the one the service ranks new listings with.
	regex := pipeline[0][0].Value.(bson.D)[0].Value.(bson.D)[0].Value.(bson.D)[0].Value.(bson.D)[0].Value.(bson.D)[0].Value.(bson.D)
	assert.Equal(t, models.QuantityPattern, regex[1].Value)
}
