package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// DefaultSteamBaseURL is the Steam Community root
const DefaultSteamBaseURL = "https://steamcommunity.com"

var itemNameIDPattern = regexp.MustCompile(`Market_LoadOrderSpread\(\s*(\d+)\s*\)`)

// SteamClientOptions configures the Steam Community Market adapter
type SteamClientOptions struct {
	BaseURL       string
	SteamID       string
	CookiesHeader string
	Currency      int
	Country       string
	Language      string
	AppID         int
	ContextID     int
}

// SteamClient adapts the Steam Community Market to the market ports.
// It implements market.Marketplace, market.OrderBookProbe and market.InventorySource.
type SteamClient struct {
	http      *HTTPClient
	opts      SteamClientOptions
	sessionID string

	nameIDMu    sync.RWMutex
	nameIDCache map[string]string
}

// NewSteamClient creates the adapter. The operator-supplied cookie header is loaded into a
// cookie jar scoped to the base URL; its sessionid cookie doubles as the CSRF token.
func NewSteamClient(opts SteamClientOptions, httpOpts HTTPClientOptions) (*SteamClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultSteamBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: steam base url: %v", shared.ErrConfigurationInvalid, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	cookies := ParseCookies(opts.CookiesHeader)
	jar.SetCookies(base, cookies)

	if httpOpts.Service == "" {
		httpOpts.Service = "steam"
	}
	httpOpts.Jar = jar

	return &SteamClient{
		http:        NewHTTPClient(httpOpts),
		opts:        opts,
		sessionID:   SessionID(cookies),
		nameIDCache: make(map[string]string),
	}, nil
}

// ParseCookies splits a browser Cookie header ("a=1; b=2") into cookies.
// Segments without '=' are ignored.
func ParseCookies(header string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, part := range strings.Split(strings.TrimSpace(header), "; ") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: strings.TrimSpace(value)})
	}
	return cookies
}

// SessionID returns the sessionid cookie value, or "" when absent
func SessionID(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if c.Name == "sessionid" {
			return c.Value
		}
	}
	return ""
}

// HighestBuyOrder reads the best bid from the order histogram. A listing with no bids
// yields zero; any failure to obtain the histogram is an error.
func (c *SteamClient) HighestBuyOrder(ctx context.Context, marketHashName string) (decimal.Decimal, error) {
	nameID, err := c.itemNameID(ctx, marketHashName)
	if err != nil {
		return decimal.Zero, err
	}

	body, err := c.http.Do(ctx, Request{
		URL:      c.opts.BaseURL + "/market/itemordershistogram",
		Endpoint: "itemordershistogram",
		Query: url.Values{
			"country":     {c.opts.Country},
			"language":    {c.opts.Language},
			"currency":    {strconv.Itoa(c.opts.Currency)},
			"item_nameid": {nameID},
		},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: histogram for %s: %v", market.ErrDataUnavailable, marketHashName, err)
	}

	payload, err := decodeObject(body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: histogram for %s: %v", market.ErrDataUnavailable, marketHashName, err)
	}
	if !isSuccess(payload["success"]) {
		return decimal.Zero, fmt.Errorf("%w: histogram for %s not successful", market.ErrDataUnavailable, marketHashName)
	}

	raw := stringify(payload["highest_buy_order"])
	if raw == "" {
		return decimal.Zero, nil
	}
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad highest_buy_order %q", market.ErrDataUnavailable, raw)
	}
	return shared.FromCents(cents), nil
}

// itemNameID scrapes the numeric id the histogram endpoint needs from the listing page.
// Ids never change for an item, so successful lookups are cached for the process lifetime.
func (c *SteamClient) itemNameID(ctx context.Context, marketHashName string) (string, error) {
	c.nameIDMu.RLock()
	id, ok := c.nameIDCache[marketHashName]
	c.nameIDMu.RUnlock()
	if ok {
		return id, nil
	}

	body, err := c.http.Do(ctx, Request{
		URL:      c.listingURL(marketHashName),
		Endpoint: "listings",
	})
	if err != nil {
		return "", fmt.Errorf("%w: listing page for %s: %v", market.ErrDataUnavailable, marketHashName, err)
	}

	m := itemNameIDPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("%w: no item_nameid for %s", market.ErrDataUnavailable, marketHashName)
	}
	id = string(m[1])

	c.nameIDMu.Lock()
	c.nameIDCache[marketHashName] = id
	c.nameIDMu.Unlock()

	return id, nil
}

// PlaceBuyOrder submits a bid of quantity units at unitPrice each
func (c *SteamClient) PlaceBuyOrder(ctx context.Context, marketHashName string, unitPrice decimal.Decimal, quantity int) market.PlacementOutcome {
	if c.sessionID == "" {
		return market.Rejected("no sessionid cookie configured")
	}

	priceTotal := shared.ToCents(unitPrice) * int64(quantity)
	body, err := c.http.Do(ctx, Request{
		Method:   http.MethodPost,
		URL:      c.opts.BaseURL + "/market/createbuyorder/",
		Endpoint: "createbuyorder",
		Form: url.Values{
			"sessionid":        {c.sessionID},
			"currency":         {strconv.Itoa(c.opts.Currency)},
			"appid":            {strconv.Itoa(c.opts.AppID)},
			"market_hash_name": {marketHashName},
			"price_total":      {strconv.FormatInt(priceTotal, 10)},
			"quantity":         {strconv.Itoa(quantity)},
		},
		Headers: map[string]string{"Referer": c.listingURL(marketHashName)},
	})
	if err != nil {
		return market.TransportFailure(err)
	}
	return ParsePlacementResponse(body)
}

// ParsePlacementResponse maps the raw createbuyorder body onto a tagged outcome.
// Recognised shapes: {"success":1,"buy_orderid":"..."}, {"success":N,"message":"..."} and [1, id].
// Anything else is treated as a transport failure.
func ParsePlacementResponse(body []byte) market.PlacementOutcome {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return market.TransportFailure(errors.New("empty response"))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return market.TransportFailure(fmt.Errorf("unrecognized response: %w", err))
	}

	switch v := raw.(type) {
	case map[string]interface{}:
		if !isSuccess(v["success"]) {
			reason := stringify(v["message"])
			if reason == "" {
				reason = fmt.Sprintf("success=%s", stringify(v["success"]))
			}
			return market.Rejected(reason)
		}
		return market.Accepted(stringify(v["buy_orderid"]))
	case []interface{}:
		if len(v) >= 2 && stringify(v[0]) == "1" {
			return market.Accepted(stringify(v[1]))
		}
		return market.TransportFailure(fmt.Errorf("unrecognized response: %s", string(trimmed)))
	default:
		return market.TransportFailure(fmt.Errorf("unrecognized response: %s", string(trimmed)))
	}
}

// CancelBuyOrder withdraws a bid
func (c *SteamClient) CancelBuyOrder(ctx context.Context, orderID string) error {
	body, err := c.http.Do(ctx, Request{
		Method:   http.MethodPost,
		URL:      c.opts.BaseURL + "/market/cancelbuyorder/",
		Endpoint: "cancelbuyorder",
		Form: url.Values{
			"sessionid":   {c.sessionID},
			"buy_orderid": {orderID},
		},
		Headers:    map[string]string{"Referer": c.opts.BaseURL + "/market/"},
		Idempotent: true,
	})
	if err != nil {
		return fmt.Errorf("%w: cancel %s: %v", market.ErrMarketplaceTransport, orderID, err)
	}

	payload, err := decodeObject(body)
	if err != nil {
		return fmt.Errorf("%w: cancel %s: %v", market.ErrMarketplaceTransport, orderID, err)
	}
	if !isSuccess(payload["success"]) {
		return fmt.Errorf("%w: cancel %s: success=%s", market.ErrMarketplaceRejected, orderID, stringify(payload["success"]))
	}
	return nil
}

// LowestAsk returns the cheapest current listing from the price overview
func (c *SteamClient) LowestAsk(ctx context.Context, marketHashName string) (decimal.Decimal, error) {
	body, err := c.http.Do(ctx, Request{
		URL:      c.opts.BaseURL + "/market/priceoverview/",
		Endpoint: "priceoverview",
		Query: url.Values{
			"country":          {c.opts.Country},
			"currency":         {strconv.Itoa(c.opts.Currency)},
			"appid":            {strconv.Itoa(c.opts.AppID)},
			"market_hash_name": {marketHashName},
		},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price overview for %s: %v", market.ErrDataUnavailable, marketHashName, err)
	}

	payload, err := decodeObject(body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price overview for %s: %v", market.ErrDataUnavailable, marketHashName, err)
	}
	lowest := stringify(payload["lowest_price"])
	if !isSuccess(payload["success"]) || lowest == "" {
		return decimal.Zero, fmt.Errorf("%w: no lowest price for %s", market.ErrDataUnavailable, marketHashName)
	}

	price, err := ParsePrice(lowest)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", market.ErrDataUnavailable, err)
	}
	return price, nil
}

// PlaceSellOrder lists one asset at unitPrice
func (c *SteamClient) PlaceSellOrder(ctx context.Context, assetID string, unitPrice decimal.Decimal) error {
	if c.sessionID == "" {
		return fmt.Errorf("%w: no sessionid cookie configured", market.ErrMarketplaceRejected)
	}

	body, err := c.http.Do(ctx, Request{
		Method:   http.MethodPost,
		URL:      c.opts.BaseURL + "/market/sellitem/",
		Endpoint: "sellitem",
		Form: url.Values{
			"sessionid": {c.sessionID},
			"appid":     {strconv.Itoa(c.opts.AppID)},
			"contextid": {strconv.Itoa(c.opts.ContextID)},
			"assetid":   {assetID},
			"amount":    {"1"},
			"price":     {strconv.FormatInt(shared.ToCents(unitPrice), 10)},
		},
		Headers: map[string]string{"Referer": fmt.Sprintf("%s/profiles/%s/inventory", c.opts.BaseURL, c.opts.SteamID)},
	})
	if err != nil {
		return fmt.Errorf("%w: sell %s: %v", market.ErrMarketplaceTransport, assetID, err)
	}

	payload, err := decodeObject(body)
	if err != nil {
		return fmt.Errorf("%w: sell %s: %v", market.ErrMarketplaceTransport, assetID, err)
	}
	if !isSuccess(payload["success"]) {
		return fmt.Errorf("%w: sell %s: %s", market.ErrMarketplaceRejected, assetID, stringify(payload["message"]))
	}
	return nil
}

type inventoryResponse struct {
	Success interface{} `json:"success"`
	Assets  []struct {
		AssetID    string `json:"assetid"`
		ClassID    string `json:"classid"`
		InstanceID string `json:"instanceid"`
	} `json:"assets"`
	Descriptions []struct {
		ClassID        string `json:"classid"`
		InstanceID     string `json:"instanceid"`
		Name           string `json:"name"`
		MarketHashName string `json:"market_hash_name"`
		Marketable     int    `json:"marketable"`
	} `json:"descriptions"`
}

// CurrentInventory lists the account's marketable items. The inventory endpoint carries no
// float data, so Quality is zero for every item.
func (c *SteamClient) CurrentInventory(ctx context.Context) ([]market.InventoryItem, error) {
	if c.opts.SteamID == "" {
		return nil, fmt.Errorf("%w: steam id not configured", market.ErrDataUnavailable)
	}

	body, err := c.http.Do(ctx, Request{
		URL:      fmt.Sprintf("%s/inventory/%s/%d/%d", c.opts.BaseURL, c.opts.SteamID, c.opts.AppID, c.opts.ContextID),
		Endpoint: "inventory",
		Query: url.Values{
			"l":     {c.opts.Language},
			"count": {"2000"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: inventory: %v", market.ErrDataUnavailable, err)
	}

	var resp inventoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: inventory: %v", market.ErrDataUnavailable, err)
	}
	if !isSuccess(resp.Success) {
		return nil, fmt.Errorf("%w: inventory not successful", market.ErrDataUnavailable)
	}

	type descKey struct{ class, instance string }
	descriptions := make(map[descKey]int, len(resp.Descriptions))
	for i, d := range resp.Descriptions {
		descriptions[descKey{d.ClassID, d.InstanceID}] = i
	}

	items := make([]market.InventoryItem, 0, len(resp.Assets))
	for _, asset := range resp.Assets {
		idx, ok := descriptions[descKey{asset.ClassID, asset.InstanceID}]
		if !ok {
			continue
		}
		d := resp.Descriptions[idx]
		if d.Marketable == 0 {
			continue
		}
		items = append(items, market.InventoryItem{
			AssetID:        asset.AssetID,
			Name:           d.Name,
			MarketHashName: d.MarketHashName,
		})
	}

	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Fetched inventory", map[string]interface{}{
		"items": len(items),
	})
	metrics.RecordInventorySize(len(items))

	return items, nil
}

func (c *SteamClient) listingURL(marketHashName string) string {
	return fmt.Sprintf("%s/market/listings/%d/%s", c.opts.BaseURL, c.opts.AppID, url.PathEscape(marketHashName))
}

// ParsePrice converts a localized Steam price string ("0,35€", "$1,234.56", "12,--€") to a decimal.
// The last '.' or ',' followed by one or two digits is the decimal separator; other separators are
// thousands groupings.
func ParsePrice(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(s, "--", "00")

	var b strings.Builder
	for _, r := range cleaned {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	digits := strings.Trim(b.String(), ".,")
	if digits == "" {
		return decimal.Zero, fmt.Errorf("unparseable price %q", s)
	}

	sep := strings.LastIndexAny(digits, ".,")
	intPart, fracPart := digits, ""
	if sep >= 0 && len(digits)-sep-1 <= 2 {
		intPart, fracPart = digits[:sep], digits[sep+1:]
	}
	intPart = strings.NewReplacer(".", "", ",", "").Replace(intPart)
	if intPart == "" {
		intPart = "0"
	}

	normalized := intPart
	if fracPart != "" {
		normalized += "." + fracPart
	}
	price, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable price %q: %w", s, err)
	}
	return price, nil
}

func decodeObject(body []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload, nil
}

// isSuccess accepts Steam's mixed success encodings: 1, true, "1"
func isSuccess(v interface{}) bool {
	switch s := v.(type) {
	case bool:
		return s
	case json.Number:
		return s.String() == "1"
	case float64:
		return s == 1
	case string:
		return s == "1" || s == "true"
	default:
		return false
	}
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

var (
	_ market.Marketplace     = (*SteamClient)(nil)
	_ market.OrderBookProbe  = (*SteamClient)(nil)
	_ market.InventorySource = (*SteamClient)(nil)
)
