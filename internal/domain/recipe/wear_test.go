package recipe_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

func TestClassify_BoundaryExactness(t *testing.T) {
	tests := []struct {
		quality float64
		want    recipe.WearBucket
	}{
		{0.0, recipe.FactoryNew},
		{0.069999, recipe.FactoryNew},
		{0.07, recipe.MinimalWear},
		{0.149999, recipe.MinimalWear},
		{0.15, recipe.FieldTested},
		{0.379999, recipe.FieldTested},
		{0.38, recipe.WellWorn},
		{0.449999, recipe.WellWorn},
		{0.45, recipe.BattleScarred},
		{1.0, recipe.BattleScarred},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, recipe.Classify(tt.quality), "quality %v", tt.quality)
	}
}

func TestClassify_OutOfRangeNeverFails(t *testing.T) {
	assert.Equal(t, recipe.FactoryNew, recipe.Classify(-0.5))
	assert.Equal(t, recipe.BattleScarred, recipe.Classify(1.5))
	assert.Equal(t, recipe.BattleScarred, recipe.Classify(math.NaN()))
}

func TestWearBucket_DisplayTextAndCondition(t *testing.T) {
	tests := []struct {
		bucket    recipe.WearBucket
		display   string
		condition string
	}{
		{recipe.FactoryNew, "Factory New", "fn"},
		{recipe.MinimalWear, "Minimal Wear", "mw"},
		{recipe.FieldTested, "Field-Tested", "ft"},
		{recipe.WellWorn, "Well-Worn", "ww"},
		{recipe.BattleScarred, "Battle-Scarred", "bs"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.display, tt.bucket.String())
		assert.Equal(t, tt.condition, tt.bucket.ConditionCode())
	}
}

func TestWearBucket_Ordering(t *testing.T) {
	assert.Less(t, int(recipe.FactoryNew), int(recipe.MinimalWear))
	assert.Less(t, int(recipe.MinimalWear), int(recipe.FieldTested))
	assert.Less(t, int(recipe.FieldTested), int(recipe.WellWorn))
	assert.Less(t, int(recipe.WellWorn), int(recipe.BattleScarred))
}
