package off

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlens-app/nutrition-mcp-server/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ProductURL:     srv.URL,
		SearchURL:      srv.URL,
		UserAgent:      "FoodLens Test Agent",
		TimeoutSeconds: 5,
	}
	return NewClient(cfg, config.NewTestLogger(io.Discard, "ERROR")), srv
}

func TestProductByBarcode_Found(t *testing.T) {
	var gotPath, gotUA string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": 1,
			"code": "3017620422003",
			"product": {
				"product_name": "Hazelnut Cocoa Spread",
				"brands": "Ferrero",
				"nutrition_grades": "e",
				"nova_group": 4,
				"nutriments": {"sugars_100g": 56.3}
			}
		}`))
	})

	product, err := client.ProductByBarcode(context.Background(), "3017620422003")
	require.NoError(t, err)
	require.NotNil(t, product)

	assert.Equal(t, "/3017620422003.json", gotPath)
	assert.Equal(t, "FoodLens Test Agent", gotUA)
	assert.Equal(t, "Hazelnut Cocoa Spread", product.ProductName)
	assert.Equal(t, "3017620422003", product.Code) // backfilled from envelope
	assert.Equal(t, 4, product.Nova())

	sugars, ok := product.Nutriment("sugars_100g")
	assert.True(t, ok)
	assert.Equal(t, 56.3, sugars)
}

func TestProductByBarcode_StatusZeroIsNotFound(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
	})

	product, err := client.ProductByBarcode(context.Background(), "0000000000000")
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestProductByBarcode_MissingProductIsNotFound(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 1}`))
	})

	product, err := client.ProductByBarcode(context.Background(), "1234")
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestProductByBarcode_UpstreamErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		product, err := client.ProductByBarcode(context.Background(), "1234")
		assert.Error(t, err)
		assert.Nil(t, product)
	})

	t.Run("malformed body", func(t *testing.T) {
		client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": `))
		})

		product, err := client.ProductByBarcode(context.Background(), "1234")
		assert.Error(t, err)
		assert.Nil(t, product)
	})

	t.Run("connection refused", func(t *testing.T) {
		client, srv := testClient(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()

		product, err := client.ProductByBarcode(context.Background(), "1234")
		assert.Error(t, err)
		assert.Nil(t, product)
	})
}

func TestSearchByCategory(t *testing.T) {
	var gotQuery map[string]string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"categories_tags_en": r.URL.Query().Get("categories_tags_en"),
			"sort_by":            r.URL.Query().Get("sort_by"),
			"page_size":          r.URL.Query().Get("page_size"),
			"json":               r.URL.Query().Get("json"),
		}
		w.Write([]byte(`{
			"count": 2,
			"products": [
				{"code": "1", "product_name": "One", "nutrition_grades": "a"},
				{"code": "2", "product_name": "Two", "nutrition_grades": "b"}
			]
		}`))
	})

	products, err := client.SearchByCategory(context.Background(), "hazelnut-spreads", 10)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "hazelnut-spreads", gotQuery["categories_tags_en"])
	assert.Equal(t, "nutriscore_score", gotQuery["sort_by"])
	assert.Equal(t, "10", gotQuery["page_size"])
	assert.Equal(t, "1", gotQuery["json"])
	assert.Equal(t, "One", products[0].ProductName)
}

func TestSearchByCategory_Failure(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	products, err := client.SearchByCategory(context.Background(), "snacks", 10)
	assert.Error(t, err)
	assert.Nil(t, products)
}

func TestProductByBarcode_ContextCancellation(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	product, err := client.ProductByBarcode(ctx, "1234")
	assert.Error(t, err)
	assert.Nil(t, product)
}
