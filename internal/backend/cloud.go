package backend

import (
	"context"
	"net/url"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
)

// CloudWMSClient queries the cloud WMS task API
type CloudWMSClient struct {
	baseURL string
	rest    *restClient
}

// NewCloudWMSClient creates a live cloud WMS adapter
func NewCloudWMSClient(cfg config.CloudWMSConfig, timeout time.Duration) *CloudWMSClient {
	rest := newRESTClient("cloud-wms", timeout)
	rest.bearerToken = cfg.OAuthToken

	return &CloudWMSClient{
		baseURL: cfg.BaseURL,
		rest:    rest,
	}
}

type taskList struct {
	Tasks []struct {
		TaskID string `json:"taskId"`
		Status string `json:"status"`
	} `json:"tasks"`
}

// CloudStuckTasks counts tasks returned by GET /api/tasks?status=<status>
func (c *CloudWMSClient) CloudStuckTasks(ctx context.Context, status string) (int, error) {
	var list taskList
	if err := c.rest.getJSON(ctx, c.baseURL+"/api/tasks", url.Values{"status": {status}}, &list); err != nil {
		return 0, err
	}
	return len(list.Tasks), nil
}
