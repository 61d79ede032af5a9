package cli

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/queries"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

func sampleEvaluation() *queries.EvaluateRecipeResponse {
	buyGroup := &recipe.DemandGroup{
		Key:            recipe.GroupKey{Collection: "Dust 2", Wear: recipe.FieldTested},
		Quantity:       2,
		ReferencePrice: decimal.RequireFromString("20.00"),
	}
	holdGroup := &recipe.DemandGroup{
		Key:            recipe.GroupKey{Collection: "Italy", Wear: recipe.MinimalWear},
		Quantity:       1,
		ReferencePrice: decimal.RequireFromString("1.00"),
	}

	return &queries.EvaluateRecipeResponse{
		Available: true,
		Groups: []services.GroupEvaluation{
			{
				Group:       buyGroup,
				Substitutes: []recipe.Substitute{{Name: "P90 | Sand Spray"}, {Name: "MP9 | Sand Dashed"}},
				HighestBid:  decimal.RequireFromString("15.00"),
				Intent: &market.BuyIntent{
					Targets:  []string{"P90 | Sand Spray (Field-Tested)", "MP9 | Sand Dashed (Field-Tested)"},
					Quantity: 2,
				},
			},
			{
				Group:      holdGroup,
				HighestBid: decimal.RequireFromString("1.00"),
			},
		},
	}
}

func TestTreeFormatter_FormatTree(t *testing.T) {
	f := NewTreeFormatter(false, false)

	want := "Recipe [Normal]\n" +
		"├── [✓] Dust 2 / Field-Tested x2 [BUY] bid 15.00 vs ref 20.00\n" +
		"│   ├── P90 | Sand Spray (Field-Tested)\n" +
		"│   └── MP9 | Sand Dashed (Field-Tested)\n" +
		"└── [ ] Italy / Minimal Wear x1 [HOLD] bid 1.00 vs ref 1.00\n" +
		"    └── (no substitutes)\n"

	assert.Equal(t, want, f.FormatTree(sampleEvaluation()))
}

func TestTreeFormatter_Unavailable(t *testing.T) {
	f := NewTreeFormatter(false, false)

	out := f.FormatTree(&queries.EvaluateRecipeResponse{Premium: true})

	assert.Equal(t, "Recipe [StatTrak™]\n└── (recipe unavailable)\n", out)
	assert.Equal(t, "Recipe unavailable", f.FormatTreeSummary(&queries.EvaluateRecipeResponse{}))
}

func TestTreeFormatter_Summary(t *testing.T) {
	f := NewTreeFormatter(true, true)

	assert.Equal(t, "Recipe: 2 groups, 1 worth bidding on, 2 buy orders", f.FormatTreeSummary(sampleEvaluation()))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "(not set)", mask(""))
	assert.Equal(t, "*****", mask("short"))
	assert.Equal(t, "sess********", mask("sessionid=abcdef"))
}
