package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/queries"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

// TreeFormatter renders a recipe evaluation as recipe → demand groups → substitutes
type TreeFormatter struct {
	useColors bool
	useEmojis bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors, useEmojis bool) *TreeFormatter {
	return &TreeFormatter{
		useColors: useColors,
		useEmojis: useEmojis,
	}
}

// FormatTree renders the evaluation with one branch per demand group
func (f *TreeFormatter) FormatTree(evaluation *queries.EvaluateRecipeResponse) string {
	if evaluation == nil {
		return "(no recipe)"
	}

	var builder strings.Builder

	kind := "Normal"
	if evaluation.Premium {
		kind = "StatTrak™"
	}
	builder.WriteString(fmt.Sprintf("Recipe [%s]\n", kind))

	if !evaluation.Available {
		builder.WriteString("└── (recipe unavailable)\n")
		return builder.String()
	}

	for i, group := range evaluation.Groups {
		isLast := i == len(evaluation.Groups)-1
		f.formatGroup(&builder, group, evaluation.Premium, isLast)
	}

	return builder.String()
}

// formatGroup formats one group line and its substitute children
func (f *TreeFormatter) formatGroup(builder *strings.Builder, evaluation services.GroupEvaluation, premium bool, isLast bool) {
	linePrefix := "├── "
	childPrefix := "│   "
	if isLast {
		linePrefix = "└── "
		childPrefix = "    "
	}

	group := evaluation.Group
	decision := "HOLD"
	if evaluation.Intent != nil {
		decision = "BUY"
	}

	builder.WriteString(fmt.Sprintf("%s%s %s / %s x%d [%s%s%s] bid %s vs ref %s\n",
		linePrefix,
		f.getStatusIcon(evaluation.Intent != nil),
		group.Key.Collection,
		group.Key.Wear.String(),
		group.Quantity,
		f.getDecisionColor(evaluation.Intent != nil),
		decision,
		f.colorReset(),
		evaluation.HighestBid.StringFixed(2),
		group.ReferencePrice.StringFixed(2),
	))

	if len(evaluation.Substitutes) == 0 {
		builder.WriteString(childPrefix + "└── (no substitutes)\n")
		return
	}

	for i, sub := range evaluation.Substitutes {
		branch := "├── "
		if i == len(evaluation.Substitutes)-1 {
			branch = "└── "
		}
		builder.WriteString(childPrefix + branch + recipe.MarketHashName(premium, sub.Name, group.Key.Wear) + "\n")
	}
}

// getStatusIcon returns a visual indicator for the buy decision
func (f *TreeFormatter) getStatusIcon(buy bool) string {
	if !f.useEmojis {
		if buy {
			return "[✓]"
		}
		return "[ ]"
	}

	if buy {
		return "🟢"
	}
	return "⚪"
}

// getDecisionColor returns ANSI color code for the decision label
func (f *TreeFormatter) getDecisionColor(buy bool) string {
	if !f.useColors {
		return ""
	}
	if buy {
		return "\033[32m" // Green
	}
	return "\033[33m" // Yellow
}

// colorReset returns ANSI reset code
func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// FormatTreeSummary creates a one-line summary of the evaluation
func (f *TreeFormatter) FormatTreeSummary(evaluation *queries.EvaluateRecipeResponse) string {
	if evaluation == nil || !evaluation.Available {
		return "Recipe unavailable"
	}

	buyCount, orders := 0, 0
	for _, group := range evaluation.Groups {
		if group.Intent != nil {
			buyCount++
			orders += len(group.Intent.Targets)
		}
	}

	return fmt.Sprintf("Recipe: %d groups, %d worth bidding on, %d buy orders", len(evaluation.Groups), buyCount, orders)
}
