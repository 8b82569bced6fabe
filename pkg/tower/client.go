// pkg/tower/client.go
//
// Client for the automation orchestration API: inventory search, groups per
// inventory, hosts per group, following paginated result sets.

package tower

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/credstore"
	"github.com/infraops/invreporter/pkg/httpclient"
	"github.com/infraops/invreporter/pkg/runctx"
	"github.com/infraops/invreporter/pkg/xerr"
)

// Inventory is one inventory summary from the API.
type Inventory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Group is one inventory group.
type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Host is one group member.
type Host struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// HostRow is one flattened report row.
type HostRow struct {
	Inventory   string
	Group       string
	HostFQDN    string
	Enabled     bool
	InventoryID int
}

// Client talks to a single environment's API base URL.
type Client struct {
	httpc *http.Client
	base  *url.URL
	cred  credstore.Credential
}

// NewClient builds a client for one environment.
func NewClient(httpc *http.Client, baseURL string, cred credstore.Credential) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, cerr.Wrapf(err, "invalid base URL %q", baseURL)
	}
	return &Client{httpc: httpc, base: base, cred: cred}, nil
}

// listPage is the API's common paginated envelope.
type listPage struct {
	Next    *string         `json:"next"`
	Results json.RawMessage `json:"results"`
}

// collect follows pagination from startURL, appending each page's results
// via accumulate.
func (c *Client) collect(ctx context.Context, startURL string, accumulate func(results json.RawMessage) error) error {
	next := startURL
	for next != "" {
		resp, err := httpclient.AuthenticatedGet(ctx, c.httpc, next, c.cred.Identity, c.cred.Secret)
		if err != nil {
			return xerr.Wrap(xerr.KindServiceError, err, "inventory API request failed")
		}

		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return xerr.New(xerr.KindAuthRejected, "inventory API rejected the credentials")
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return xerr.New(xerr.KindServiceError,
				fmt.Sprintf("inventory API returned status %d", resp.StatusCode))
		}

		var page listPage
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return xerr.Wrap(xerr.KindServiceError, err, "decode inventory API response")
		}

		if err := accumulate(page.Results); err != nil {
			return err
		}

		next = ""
		if page.Next != nil && *page.Next != "" {
			ref, err := url.Parse(*page.Next)
			if err != nil {
				return xerr.Wrap(xerr.KindServiceError, err, "invalid pagination link")
			}
			next = c.base.ResolveReference(ref).String()
		}
	}
	return nil
}

// SearchInventories lists inventories whose name matches the search term.
func (c *Client) SearchInventories(ctx context.Context, search string) ([]Inventory, error) {
	var inventories []Inventory
	startURL := fmt.Sprintf("%s/inventories/?search=%s", c.base, url.QueryEscape(search))
	err := c.collect(ctx, startURL, func(results json.RawMessage) error {
		var page []Inventory
		if err := json.Unmarshal(results, &page); err != nil {
			return xerr.Wrap(xerr.KindServiceError, err, "decode inventories")
		}
		inventories = append(inventories, page...)
		return nil
	})
	return inventories, err
}

// InventoryGroups lists the groups of one inventory.
func (c *Client) InventoryGroups(ctx context.Context, inventoryID int) ([]Group, error) {
	var groups []Group
	startURL := fmt.Sprintf("%s/inventories/%d/groups/", c.base, inventoryID)
	err := c.collect(ctx, startURL, func(results json.RawMessage) error {
		var page []Group
		if err := json.Unmarshal(results, &page); err != nil {
			return xerr.Wrap(xerr.KindServiceError, err, "decode groups")
		}
		groups = append(groups, page...)
		return nil
	})
	return groups, err
}

// GroupHosts lists the hosts of one group.
func (c *Client) GroupHosts(ctx context.Context, groupID int) ([]Host, error) {
	var hosts []Host
	startURL := fmt.Sprintf("%s/groups/%d/hosts/", c.base, groupID)
	err := c.collect(ctx, startURL, func(results json.RawMessage) error {
		var page []Host
		if err := json.Unmarshal(results, &page); err != nil {
			return xerr.Wrap(xerr.KindServiceError, err, "decode hosts")
		}
		hosts = append(hosts, page...)
		return nil
	})
	return hosts, err
}

// InventoryReport flattens every matching inventory into report rows. An
// empty result is not an error; the caller decides how to present it.
func (c *Client) InventoryReport(rc *runctx.RuntimeContext, search string) ([]HostRow, error) {
	inventories, err := c.SearchInventories(rc.Ctx, search)
	if err != nil {
		return nil, err
	}
	if len(inventories) == 0 {
		rc.Log.Warn("No inventories found", zap.String("search", search))
		return nil, nil
	}
	rc.Log.Info("Found matching inventories",
		zap.String("search", search),
		zap.Int("count", len(inventories)),
	)

	var rows []HostRow
	for _, inventory := range inventories {
		groups, err := c.InventoryGroups(rc.Ctx, inventory.ID)
		if err != nil {
			return nil, err
		}
		rc.Log.Debug("Processing inventory",
			zap.String("inventory", inventory.Name),
			zap.Int("groups", len(groups)),
		)

		for _, group := range groups {
			hosts, err := c.GroupHosts(rc.Ctx, group.ID)
			if err != nil {
				return nil, err
			}
			for _, host := range hosts {
				rows = append(rows, HostRow{
					Inventory:   inventory.Name,
					Group:       group.Name,
					HostFQDN:    host.Name,
					Enabled:     host.Enabled,
					InventoryID: inventory.ID,
				})
			}
		}
	}

	rc.Log.Info("Inventory retrieval complete",
		zap.String("search", search),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}
