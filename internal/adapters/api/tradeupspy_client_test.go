package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/api"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
	"github.com/andrescamacho/tradeup-bot/test/helpers"
)

const shareBody = `{
	"statTrak": true,
	"skinList": [
		{"name": "P250 | Sand Dune", "collection": {"idc": 11, "name": "Dust"}, "idr": 2, "fv": 0.10, "price": 1.5, "maxFloat": 0.12},
		{"name": "MP7 | Army Recon", "collection": {"idc": 11, "name": "Dust"}, "idr": 2, "fv": 0.11, "price": "2.25"}
	]
}`

func newTradeUpSpyClient(t *testing.T, handler http.Handler) (*api.TradeUpSpyClient, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewTradeUpSpyClient(api.TradeUpSpyOptions{
		BaseURL: server.URL,
	}, api.HTTPClientOptions{
		BackoffBase: time.Millisecond,
		VerifySSL:   true,
		Clock:       shared.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	return client, server.URL
}

func TestTradeUpSpyClient_FetchParsesRecipe(t *testing.T) {
	// Arrange
	mux := http.NewServeMux()
	mux.HandleFunc("/api/calculator/share", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://www.tradeupspy.com", r.Header.Get("Origin"))
		assert.Equal(t, "https://www.tradeupspy.com/", r.Header.Get("Referer"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Chrome/127")
		assert.Equal(t, "My Tradeup", r.URL.Query().Get("name"))
		fmt.Fprint(w, shareBody)
	})
	client, base := newTradeUpSpyClient(t, mux)
	link, err := recipe.ParseShareLink("https://www.tradeupspy.com/calculator/share/My%20Tradeup/true/2/0.1,0.11/11,12/21/1.5,2.25/4.5")
	require.NoError(t, err)
	id := link.APIURL(base)

	// Act
	doc, err := client.Fetch(context.Background(), id)

	// Assert
	require.NoError(t, err)
	assert.True(t, doc.Available())
	assert.True(t, doc.Premium())
	assert.Equal(t, id, doc.SourceID())

	reqs := doc.Requirements()
	require.Len(t, reqs, 2)
	assert.Equal(t, "P250 | Sand Dune", reqs[0].Name)
	assert.Equal(t, recipe.Collection{ID: 11, Name: "Dust"}, reqs[0].Collection)
	assert.True(t, reqs[0].ReferencePrice.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, 0.12, reqs[0].MaxQuality)
	assert.True(t, reqs[1].ReferencePrice.Equal(decimal.RequireFromString("2.25")))
	assert.Equal(t, 1.0, reqs[1].MaxQuality)
}

func TestTradeUpSpyClient_FetchFailureIsUnavailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/calculator/share", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	client, base := newTradeUpSpyClient(t, mux)

	_, err := client.Fetch(context.Background(), base+"/api/calculator/share?name=x")

	assert.ErrorIs(t, err, recipe.ErrRecipeUnavailable)
}

func TestTradeUpSpyClient_FindSubstitutes(t *testing.T) {
	// Arrange
	mux := http.NewServeMux()
	mux.HandleFunc("/api/skins/search/1", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("stattrak"))
		assert.Equal(t, "2", q.Get("rarity"))
		assert.Equal(t, "mw", q.Get("condition"))
		assert.Equal(t, "11", q.Get("collection"))
		assert.Equal(t, "0", q.Get("filter"))
		fmt.Fprint(w, `{"skinList":[{"name":"P250 | Sand Dune"},{"name":"MP7 | Army Recon"},{"name":""}]}`)
	})
	client, _ := newTradeUpSpyClient(t, mux)
	req := recipe.SkinRequirement{
		Name:       "P250 | Sand Dune",
		Collection: recipe.Collection{ID: 11, Name: "Dust"},
		Rarity:     2,
		Quality:    0.10,
	}

	// Act
	subs := client.FindSubstitutes(context.Background(), req, true)

	// Assert
	assert.Equal(t, []recipe.Substitute{{Name: "P250 | Sand Dune"}, {Name: "MP7 | Army Recon"}}, subs)
}

func TestTradeUpSpyClient_FindSubstitutesFailureIsEmpty(t *testing.T) {
	// Arrange
	mux := http.NewServeMux()
	mux.HandleFunc("/api/skins/search/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	client, _ := newTradeUpSpyClient(t, mux)
	logger := helpers.NewCapturingLogger()
	ctx := common.WithLogger(context.Background(), logger)

	// Act
	subs := client.FindSubstitutes(ctx, recipe.SkinRequirement{Name: "x", Quality: 0.5}, false)

	// Assert
	assert.Empty(t, subs)
	assert.Equal(t, 1, logger.CountLevel(common.LevelError))
}
