// pkg/tower/client_test.go

package tower

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/credstore"
	"github.com/infraops/invreporter/pkg/runctx"
	"github.com/infraops/invreporter/pkg/xerr"
)

func testCred() credstore.Credential {
	return credstore.Credential{Identity: "abc123", Secret: "hunter2"}
}

func testContext(t *testing.T) *runctx.RuntimeContext {
	t.Helper()
	return runctx.New(context.Background(), zap.NewNop(), "test")
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.Client(), srv.URL, testCred())
	require.NoError(t, err)
	return client
}

func TestSearchInventoriesFollowsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/inventories/", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "abc123", user)
		require.Equal(t, "hunter2", pass)
		require.Equal(t, "app", r.URL.Query().Get("search"))

		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"next": null, "results": [{"id": 2, "name": "app-prod"}]}`)
			return
		}
		// Relative next link, resolved against the client's base URL.
		fmt.Fprint(w, `{"next": "/inventories/?search=app&page=2", "results": [{"id": 1, "name": "app-dev"}]}`)
	})

	client := newTestClient(t, mux)
	inventories, err := client.SearchInventories(context.Background(), "app")
	require.NoError(t, err)
	require.Len(t, inventories, 2)
	assert.Equal(t, Inventory{ID: 1, Name: "app-dev"}, inventories[0])
	assert.Equal(t, Inventory{ID: 2, Name: "app-prod"}, inventories[1])
}

func TestSearchInventoriesUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.SearchInventories(context.Background(), "app")
	require.Error(t, err)
	kind, ok := xerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, xerr.KindAuthRejected, kind)
}

func TestSearchInventoriesServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.SearchInventories(context.Background(), "app")
	require.Error(t, err)
	kind, ok := xerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, xerr.KindServiceError, kind)
	assert.Contains(t, err.Error(), "502")
}

func TestInventoryReportFlattensRows(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/inventories/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"next": null, "results": [{"id": 7, "name": "billing"}]}`)
	})
	mux.HandleFunc("/inventories/7/groups/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"next": null, "results": [{"id": 11, "name": "web"}, {"id": 12, "name": "db"}]}`)
	})
	mux.HandleFunc("/groups/11/hosts/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"next": null, "results": [
			{"name": "web01.internal", "enabled": true},
			{"name": "web02.internal", "enabled": false}
		]}`)
	})
	mux.HandleFunc("/groups/12/hosts/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"next": null, "results": [{"name": "db01.internal", "enabled": true}]}`)
	})

	client := newTestClient(t, mux)
	rows, err := client.InventoryReport(testContext(t), "billing")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, HostRow{
		Inventory:   "billing",
		Group:       "web",
		HostFQDN:    "web01.internal",
		Enabled:     true,
		InventoryID: 7,
	}, rows[0])
	assert.Equal(t, "db01.internal", rows[2].HostFQDN)
	assert.False(t, rows[1].Enabled)
}

func TestInventoryReportNoMatches(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"next": null, "results": []}`)
	}))

	rows, err := client.InventoryReport(testContext(t), "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	_, err := NewClient(http.DefaultClient, "http://[::1", testCred())
	assert.Error(t, err)
}
