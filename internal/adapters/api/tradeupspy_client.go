package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

const (
	DefaultTradeUpSpyOrigin    = "https://www.tradeupspy.com"
	DefaultTradeUpSpyUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
)

// TradeUpSpyOptions configures the TradeUpSpy adapter
type TradeUpSpyOptions struct {
	BaseURL   string
	WebOrigin string
	UserAgent string
}

// TradeUpSpyClient fetches recipe documents and interchangeable skins.
// It implements recipe.Source and recipe.SubstituteResolver.
type TradeUpSpyClient struct {
	http    *HTTPClient
	baseURL string
}

// NewTradeUpSpyClient creates the adapter. The API only answers requests that look like they
// come from its own web calculator, so every request carries browser-like headers.
func NewTradeUpSpyClient(opts TradeUpSpyOptions, httpOpts HTTPClientOptions) *TradeUpSpyClient {
	if opts.BaseURL == "" {
		opts.BaseURL = recipe.DefaultAPIBase
	}
	if opts.WebOrigin == "" {
		opts.WebOrigin = DefaultTradeUpSpyOrigin
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultTradeUpSpyUserAgent
	}
	origin := strings.TrimRight(opts.WebOrigin, "/")

	if httpOpts.Service == "" {
		httpOpts.Service = "tradeupspy"
	}
	httpOpts.DefaultHeaders = map[string]string{
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-GB,en;q=0.9",
		"DNT":             "1",
		"User-Agent":      opts.UserAgent,
		"Origin":          origin,
		"Referer":         origin + "/",
	}

	return &TradeUpSpyClient{
		http:    NewHTTPClient(httpOpts),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

type shareResponse struct {
	StatTrak bool        `json:"statTrak"`
	SkinList []skinEntry `json:"skinList"`
}

type skinEntry struct {
	Name       string `json:"name"`
	Collection struct {
		ID   int    `json:"idc"`
		Name string `json:"name"`
	} `json:"collection"`
	Rarity   int          `json:"idr"`
	Float    float64      `json:"fv"`
	Price    json.Number  `json:"price"`
	MaxFloat *json.Number `json:"maxFloat"`
}

// Fetch retrieves the recipe behind a normalized API url (see recipe.ShareLink.APIURL)
func (c *TradeUpSpyClient) Fetch(ctx context.Context, id string) (*recipe.Document, error) {
	body, err := c.http.Do(ctx, Request{URL: id, Endpoint: "calculator_share"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recipe.ErrRecipeUnavailable, err)
	}

	var resp shareResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode recipe: %v", recipe.ErrRecipeUnavailable, err)
	}

	requirements := make([]recipe.SkinRequirement, 0, len(resp.SkinList))
	for _, skin := range resp.SkinList {
		req, err := skin.toRequirement()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", recipe.ErrRecipeUnavailable, err)
		}
		requirements = append(requirements, req)
	}

	doc, err := recipe.NewDocument(id, resp.StatTrak, requirements)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recipe.ErrRecipeUnavailable, err)
	}
	return doc, nil
}

func (s skinEntry) toRequirement() (recipe.SkinRequirement, error) {
	price := decimal.Zero
	if s.Price != "" {
		parsed, err := decimal.NewFromString(s.Price.String())
		if err != nil {
			return recipe.SkinRequirement{}, fmt.Errorf("bad price %q for %s", s.Price, s.Name)
		}
		price = parsed
	}

	// A missing tolerance accepts any float
	maxQuality := 1.0
	if s.MaxFloat != nil {
		if v, err := s.MaxFloat.Float64(); err == nil {
			maxQuality = v
		}
	}

	return recipe.SkinRequirement{
		Name:           s.Name,
		Collection:     recipe.Collection{ID: s.Collection.ID, Name: s.Collection.Name},
		Rarity:         s.Rarity,
		Quality:        s.Float,
		ReferencePrice: price,
		MaxQuality:     maxQuality,
	}, nil
}

// FindSubstitutes searches skins of the same collection, rarity and wear.
// Failures are logged and produce an empty result.
func (c *TradeUpSpyClient) FindSubstitutes(ctx context.Context, requirement recipe.SkinRequirement, premium bool) []recipe.Substitute {
	logger := common.LoggerFromContext(ctx)

	body, err := c.http.Do(ctx, Request{
		URL:      c.baseURL + "/api/skins/search/1",
		Endpoint: "skins_search",
		Query: url.Values{
			"stattrak":   {strconv.FormatBool(premium)},
			"rarity":     {strconv.Itoa(requirement.Rarity)},
			"condition":  {requirement.Wear().ConditionCode()},
			"collection": {strconv.Itoa(requirement.Collection.ID)},
			"skinname":   {""},
			"filter":     {"0"},
		},
	})
	if err != nil {
		logger.Log(common.LevelError, "Failed to fetch interchangeable items", map[string]interface{}{
			"requirement": requirement.Name,
			"error":       err.Error(),
		})
		return nil
	}

	var resp struct {
		SkinList []struct {
			Name string `json:"name"`
		} `json:"skinList"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		logger.Log(common.LevelError, "Failed to decode interchangeable items", map[string]interface{}{
			"requirement": requirement.Name,
			"error":       err.Error(),
		})
		return nil
	}

	substitutes := make([]recipe.Substitute, 0, len(resp.SkinList))
	for _, skin := range resp.SkinList {
		if skin.Name == "" {
			continue
		}
		substitutes = append(substitutes, recipe.Substitute{Name: skin.Name})
	}
	return substitutes
}

var (
	_ recipe.Source             = (*TradeUpSpyClient)(nil)
	_ recipe.SubstituteResolver = (*TradeUpSpyClient)(nil)
)
