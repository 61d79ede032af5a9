package recipe

import "errors"

var (
	// ErrMalformedLink is returned when a share link does not match the fixed share pattern
	ErrMalformedLink = errors.New("malformed recipe link")

	// ErrEmptyRecipe is returned when a recipe carries no input requirements
	ErrEmptyRecipe = errors.New("recipe has no requirements")

	// ErrRecipeUnavailable is returned when the recipe source could not deliver a document
	ErrRecipeUnavailable = errors.New("recipe unavailable")
)
