// Package clients holds the outbound HTTP clients for the auxiliary AI
// tools the admin panel proxies to.
package clients

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// ServiceClient is a thin client for one upstream tool.
type ServiceClient struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
}

func newServiceClient(baseURL string, timeout time.Duration) *ServiceClient {
	return &ServiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ServiceClient) withBasicAuth(username, password string) *ServiceClient {
	c.username = username
	c.password = password
	return c
}

// Do performs one request against the upstream. The caller closes the body.
func (c *ServiceClient) Do(ctx context.Context, method, path string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return c.httpClient.Do(req)
}

func (c *ServiceClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, "", nil)
}

type Clients struct {
	ModelRunner *ServiceClient
	Workflow    *ServiceClient
	FlowBuilder *ServiceClient
}

func New(modelRunnerURL, workflowURL, workflowUser, workflowPassword, flowBuilderURL string, timeout time.Duration) *Clients {
	return &Clients{
		ModelRunner: newServiceClient(modelRunnerURL, timeout),
		Workflow:    newServiceClient(workflowURL, timeout).withBasicAuth(workflowUser, workflowPassword),
		FlowBuilder: newServiceClient(flowBuilderURL, timeout),
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	for _, client := range []*ServiceClient{c.ModelRunner, c.Workflow, c.FlowBuilder} {
		if client != nil {
			client.httpClient.CloseIdleConnections()
		}
	}
}
