// internal/gateway/http_test.go
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupcart/internal/domain"
	"groupcart/internal/util"
)

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"NotFound", http.StatusNotFound, util.ErrNotFound},
		{"Conflict", http.StatusConflict, util.ErrConflict},
		{"BadRequest", http.StatusBadRequest, util.ErrValidation},
		{"UnprocessableEntity", http.StatusUnprocessableEntity, util.ErrValidation},
		{"InternalServerError", http.StatusInternalServerError, util.ErrNetwork},
		{"BadGateway", http.StatusBadGateway, util.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, 0)
			_, err := client.GetUser(context.Background(), "alice")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClientGetUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		// Usernames are slugified before they hit the wire.
		assert.Equal(t, "/users/jane-doe", r.URL.Path)
		_ = json.NewEncoder(w).Encode(domain.User{
			Username: "jane-doe", FirstName: "Jane", LastName: "Doe", Color: "#ff0000",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", 0) // trailing slash must not double up
	user, err := client.GetUser(context.Background(), "Jane Doe")

	require.NoError(t, err)
	assert.Equal(t, "jane-doe", user.Username)
	assert.Equal(t, "Jane Doe", user.DisplayName())
	assert.Equal(t, "#ff0000", user.Color)
}

func TestClientMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	_, err := client.GetUser(context.Background(), "alice")

	// A body that does not match the contract is a validation failure, not
	// a network one: retrying will not help.
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestClientTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, time.Second)
	_, err := client.GetUser(context.Background(), "alice")
	assert.ErrorIs(t, err, util.ErrNetwork)
}

func TestClientFulfillFavor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/favors/fulfill", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req FulfillRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(7), req.ItemID)
		assert.Equal(t, "Milk", req.Item)
		assert.Equal(t, "bob", req.By)
		assert.Equal(t, "alice", req.For)
		assert.True(t, req.Amount.Equal(decimal.NewFromFloat(2.50)))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Favor{
			ID: 42, ItemID: req.ItemID, Item: req.Item,
			By: req.By, For: req.For, Amount: req.Amount,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	favor, err := client.FulfillFavor(context.Background(), FulfillRequest{
		ItemID: 7, Item: "Milk", By: "bob", For: "alice",
		Amount: decimal.NewFromFloat(2.50),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), favor.ID)
	assert.Equal(t, "bob", favor.By)
	assert.False(t, favor.Reimbursed)
}

func TestClientVoidFavor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/favors/42/void", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	assert.NoError(t, client.VoidFavor(context.Background(), 42))
}

func TestClientUpdateFavor(t *testing.T) {
	t.Run("OmitsNilAmount", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/favors/42", r.URL.Path)

			var raw map[string]json.RawMessage
			require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
			assert.Contains(t, raw, "reimbursed")
			assert.NotContains(t, raw, "amount")

			_ = json.NewEncoder(w).Encode(domain.Favor{ID: 42, Reimbursed: true, Amount: decimal.NewFromFloat(2.50)})
		}))
		defer server.Close()

		client := NewClient(server.URL, 0)
		favor, err := client.UpdateFavor(context.Background(), 42, true, nil)
		require.NoError(t, err)
		assert.True(t, favor.Reimbursed)
	})

	t.Run("SendsCorrectedAmount", func(t *testing.T) {
		corrected := decimal.NewFromFloat(3.10)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req updateFavorRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.NotNil(t, req.Amount)
			assert.True(t, req.Amount.Equal(corrected))

			_ = json.NewEncoder(w).Encode(domain.Favor{ID: 42, Reimbursed: true, Amount: *req.Amount})
		}))
		defer server.Close()

		client := NewClient(server.URL, 0)
		favor, err := client.UpdateFavor(context.Background(), 42, true, &corrected)
		require.NoError(t, err)
		assert.True(t, favor.Amount.Equal(corrected))
	})
}

func TestClientListAndCartPaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/alice/list":
			_ = json.NewEncoder(w).Encode([]domain.ListItem{{ID: 1, Owner: "alice", Item: "Milk", Priority: 2}})
		case "/groups/flat-4b/cart":
			_ = json.NewEncoder(w).Encode([]domain.SharedShoppingItem{
				{Item: "Milk", ItemIDs: []int64{1, 3}, NeededBy: []string{"alice", "bob"}},
			})
		case "/users/alice/favors/for":
			_ = json.NewEncoder(w).Encode([]domain.Favor{{ID: 1, For: "alice", By: "bob", Amount: decimal.NewFromFloat(2.50)}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	ctx := context.Background()

	items, err := client.GetUserList(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Milk", items[0].Item)

	cart, err := client.GetGroupSharedList(ctx, "Flat 4B")
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, []string{"alice", "bob"}, cart[0].NeededBy)

	favors, err := client.GetFavorsFor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, favors, 1)
	assert.Equal(t, "bob", favors[0].By)
}
