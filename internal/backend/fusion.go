package backend

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
)

const fusionExceptionsPath = "/fscmRestApi/resources/latest/inventoryExceptions"

// FusionClient queries Fusion inventory exceptions
type FusionClient struct {
	baseURL string
	rest    *restClient
}

// NewFusionClient creates a live Fusion adapter. A bearer token takes
// precedence; otherwise basic auth is used when a user is configured.
func NewFusionClient(cfg config.FusionConfig, timeout time.Duration) *FusionClient {
	rest := newRESTClient("fusion", timeout)
	rest.bearerToken = cfg.OAuthToken
	if cfg.OAuthToken == "" {
		rest.basicUser = cfg.User
		rest.basicPass = cfg.Password
	}

	return &FusionClient{
		baseURL: cfg.BaseURL,
		rest:    rest,
	}
}

type exceptionPage struct {
	Items []json.RawMessage `json:"items"`
}

// InventoryExceptions counts items on the first page of size limit
func (c *FusionClient) InventoryExceptions(ctx context.Context, limit int) (int, error) {
	var page exceptionPage
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := c.rest.getJSON(ctx, c.baseURL+fusionExceptionsPath, params, &page); err != nil {
		return 0, err
	}
	return len(page.Items), nil
}
