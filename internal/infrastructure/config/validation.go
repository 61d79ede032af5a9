package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// Validator checks `validate` tags and reports failures by their config key
// (bot.check_interval) rather than the Go field path.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that names fields by their mapstructure tag
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := field.Tag.Get("mapstructure")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Validate returns nil or an error wrapping shared.ErrConfigurationInvalid that lists every failing key
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w:\n  %s", shared.ErrConfigurationInvalid, strings.Join(problems, "\n  "))
}

// describe renders one failure as "<key>: <rule> (got <value>)"
func describe(fe validator.FieldError) string {
	key := fe.Namespace()
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[i+1:] // drop the root struct name
	}

	rule := fe.Tag()
	if fe.Param() != "" {
		rule += "=" + fe.Param()
	}
	return fmt.Sprintf("%s: %s (got %q)", key, rule, fmt.Sprint(fe.Value()))
}

// ValidateConfig checks the static rules of the whole configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// ValidateForRun adds what only the trading loop needs on top of ValidateConfig:
// a recipe to trade and, for live trading, a Steam session to trade with.
func ValidateForRun(cfg *Config) error {
	if len(cfg.Bot.RecipeLinks) == 0 {
		return fmt.Errorf("%w: bot.recipe_links must list at least one share link", shared.ErrConfigurationInvalid)
	}
	if !cfg.Bot.EnableOrders {
		return nil
	}

	var missing []string
	if cfg.Steam.SteamID == "" {
		missing = append(missing, "steam.steam_id")
	}
	if cfg.Steam.CookiesHeader == "" {
		missing = append(missing, "steam.cookies_header")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: live trading requires %s", shared.ErrConfigurationInvalid, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateRecipeLinks parses each link and returns one error per malformed link.
// The run loop skips bad links on its own; `config show` uses this to flag them early.
func ValidateRecipeLinks(links []string) []error {
	var errs []error
	for _, link := range links {
		if _, err := recipe.ParseShareLink(link); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
