package cartclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientNew(t *testing.T) {
	t.Run("Base URL is required", func(t *testing.T) {
		_, err := New(Config{Shop: "demo-shop"})
		require.Error(t, err)
	})

	t.Run("Shop is required", func(t *testing.T) {
		_, err := New(Config{BaseURL: "http://localhost:8081"})
		require.Error(t, err)
	})
}

func TestClientSaveCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends the expected request and decodes the saved cart", func(t *testing.T) {
		var gotPath, gotShop, gotAuth, gotTrace string
		var gotBody map[string]interface{}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotShop = r.URL.Query().Get("shop")
			gotAuth = r.Header.Get("Authorization")
			gotTrace = r.Header.Get("X-Trace-ID")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"Cart saved successfully!","cart":{"id":"7b7e43a9-4ac7-4b31-bb39-9f6fcbf3bb06","customerId":"C1","productVariantIds":["v1","v2"],"createdAt":"2026-08-30T10:00:00Z"}}`))
		}))
		defer server.Close()

		client, err := New(Config{BaseURL: server.URL, Shop: "demo-shop", SessionToken: "session-token"})
		require.NoError(t, err)

		cart, err := client.SaveCart(ctx, "C1", []string{"v1", "v2"})
		require.NoError(t, err)

		require.Equal(t, "/api/save-cart", gotPath)
		require.Equal(t, "demo-shop", gotShop)
		require.Equal(t, "Bearer session-token", gotAuth)
		require.NotEmpty(t, gotTrace)
		require.Equal(t, "C1", gotBody["customerId"])
		require.Equal(t, []interface{}{"v1", "v2"}, gotBody["productVariantIds"])

		require.Equal(t, "7b7e43a9-4ac7-4b31-bb39-9f6fcbf3bb06", cart.ID)
		require.Equal(t, "C1", cart.CustomerID)
		require.Equal(t, []string{"v1", "v2"}, cart.ProductVariantIDs)
	})

	t.Run("Empty selection is sent as an array, not null", func(t *testing.T) {
		var rawBody map[string]json.RawMessage

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&rawBody))
			w.Write([]byte(`{"message":"Cart saved successfully!","cart":{"id":"x","customerId":"C1","productVariantIds":[],"createdAt":"2026-08-30T10:00:00Z"}}`))
		}))
		defer server.Close()

		client, err := New(Config{BaseURL: server.URL, Shop: "demo-shop"})
		require.NoError(t, err)

		_, err = client.SaveCart(ctx, "C1", []string{})
		require.NoError(t, err)
		require.JSONEq(t, `[]`, string(rawBody["productVariantIds"]))
	})

	t.Run("Non-200 response surfaces as an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"productVariantIds must be an array."}`))
		}))
		defer server.Close()

		client, err := New(Config{BaseURL: server.URL, Shop: "demo-shop"})
		require.NoError(t, err)

		_, err = client.SaveCart(ctx, "C1", []string{"v1"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "400")
	})
}

func TestClientRetrieveCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends shop and customerId and decodes the array", func(t *testing.T) {
		var gotPath, gotShop, gotCustomer string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotShop = r.URL.Query().Get("shop")
			gotCustomer = r.URL.Query().Get("customerId")
			w.Write([]byte(`["v2","v1"]`))
		}))
		defer server.Close()

		client, err := New(Config{BaseURL: server.URL, Shop: "demo-shop"})
		require.NoError(t, err)

		variantIDs, err := client.RetrieveCart(ctx, "C1")
		require.NoError(t, err)
		require.Equal(t, "/api/retrieve-cart", gotPath)
		require.Equal(t, "demo-shop", gotShop)
		require.Equal(t, "C1", gotCustomer)
		require.Equal(t, []string{"v2", "v1"}, variantIDs)
	})

	t.Run("Empty array means no saved cart", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client, err := New(Config{BaseURL: server.URL, Shop: "demo-shop"})
		require.NoError(t, err)

		variantIDs, err := client.RetrieveCart(ctx, "C1")
		require.NoError(t, err)
		require.NotNil(t, variantIDs)
		require.Empty(t, variantIDs)
	})

	t.Run("Non-200 response surfaces as an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Invalid session"}`))
		}))
		defer server.Close()

		client, err := New(Config{BaseURL: server.URL, Shop: "demo-shop"})
		require.NoError(t, err)

		_, err = client.RetrieveCart(ctx, "C1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "401")
	})
}
