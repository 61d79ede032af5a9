package recipe

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultAPIBase is the TradeUpSpy API root used when no override is configured
const DefaultAPIBase = "https://api.tradeupspy.com"

// sharePattern matches calculator share links. The eight segments are, in order:
// name, statTrak flag, input rarity, input floats, input ids, output ids, input prices, output prices.
var sharePattern = regexp.MustCompile(
	`^https://www\.tradeupspy\.com/calculator/share/([^/]+)/([^/]+)/([^/]+)/([^/]+)/([^/]+)/([^/]+)/([^/]+)/([^/?#]+)/?$`,
)

// ShareLink is a validated TradeUpSpy share link broken into its path segments
type ShareLink struct {
	Name             string
	StatTrak         string
	InputRarity      string
	InputFloatValues string
	InputIDs         string
	OutputIDs        string
	InputPrices      string
	OutputPrices     string
}

// ParseShareLink validates an operator-supplied share link.
// Links that do not match the fixed pattern fail before any network call is made.
func ParseShareLink(link string) (*ShareLink, error) {
	m := sharePattern.FindStringSubmatch(strings.TrimSpace(link))
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedLink, link)
	}

	name := m[1]
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	return &ShareLink{
		Name:             name,
		StatTrak:         m[2],
		InputRarity:      m[3],
		InputFloatValues: m[4],
		InputIDs:         m[5],
		OutputIDs:        m[6],
		InputPrices:      m[7],
		OutputPrices:     m[8],
	}, nil
}

// APIURL builds the deterministic API query for this link. The result doubles as the cache key.
func (l *ShareLink) APIURL(apiBase string) string {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	apiBase = strings.TrimRight(apiBase, "/")

	return fmt.Sprintf(
		"%s/api/calculator/share?name=%s&st=%s&ir=%s&inputFloatValues=%s&inputIds=%s&outputIds=%s&inputPrices=%s&outputPrices=%s",
		apiBase,
		url.PathEscape(l.Name),
		l.StatTrak,
		l.InputRarity,
		l.InputFloatValues,
		l.InputIDs,
		l.OutputIDs,
		l.InputPrices,
		l.OutputPrices,
	)
}

// NormalizeLink parses a share link and returns its API identifier in one step
func NormalizeLink(link, apiBase string) (string, error) {
	parsed, err := ParseShareLink(link)
	if err != nil {
		return "", err
	}
	return parsed.APIURL(apiBase), nil
}
