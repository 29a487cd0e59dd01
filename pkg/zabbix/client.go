// Package zabbix implements the monitoring-inventory client used to
// mirror LMS devices as Zabbix hosts, over the Zabbix JSON-RPC 2.0 API.
package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
)

const (
	apiPath            = "/api_jsonrpc.php"
	defaultHTTPTimeout = 30 * time.Second
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the Zabbix API connection settings.
type Config struct {
	URL         string `json:"url"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	HostGroupID string `json:"host_group_id"`
}

// Client talks to the Zabbix JSON-RPC API. All lookup misses surface as
// nil results, never as errors; errors mean the call itself failed.
type Client struct {
	config     Config
	httpClient HTTPClient
	logger     logger.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates an unauthenticated client. Call Connect before use.
func NewClient(config Config, log logger.Logger) *Client {
	config.URL = strings.TrimRight(config.URL, "/")

	if config.HostGroupID == "" {
		config.HostGroupID = "1"
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     log,
	}
}

// SetHTTPClient overrides the underlying HTTP client, used in tests.
func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

// Connect logs in to the Zabbix API and verifies the configured host
// group, falling back to the first available group when it is missing.
func (c *Client) Connect(ctx context.Context) error {
	var token string

	params := map[string]string{
		"username": c.config.Username,
		"password": c.config.Password,
	}

	if err := c.call(ctx, "user.login", params, &token); err != nil {
		return fmt.Errorf("zabbix login: %w", err)
	}

	if token == "" {
		return ErrEmptyLoginResult
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	c.logger.Info().Str("url", c.config.URL).Msg("Connected to Zabbix API")

	return c.verifyHostGroup(ctx)
}

// verifyHostGroup checks that the configured host group exists. When it
// does not, the first available group is used instead so that host
// creation keeps working against a differently provisioned Zabbix.
func (c *Client) verifyHostGroup(ctx context.Context) error {
	var groups []hostGroup

	params := map[string]interface{}{"groupids": []string{c.config.HostGroupID}}
	if err := c.call(ctx, "hostgroup.get", params, &groups); err != nil {
		return fmt.Errorf("verify host group: %w", err)
	}

	if len(groups) > 0 {
		c.logger.Info().Str("group", groups[0].Name).Str("group_id", c.config.HostGroupID).Msg("Using host group")
		return nil
	}

	c.logger.Warn().Str("group_id", c.config.HostGroupID).Msg("Configured host group not found, picking first available")

	if err := c.call(ctx, "hostgroup.get", map[string]interface{}{}, &groups); err != nil {
		return fmt.Errorf("list host groups: %w", err)
	}

	if len(groups) == 0 {
		return ErrNoHostGroups
	}

	c.config.HostGroupID = groups[0].GroupID
	c.logger.Info().Str("group", groups[0].Name).Str("group_id", groups[0].GroupID).Msg("Using first available host group")

	return nil
}

// call performs one JSON-RPC request. result may be nil when the caller
// does not need the response body.
func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token == "" && method != "user.login" {
		return ErrNotAuthenticated
	}

	reqBody := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      uuid.New().String(),
	}

	if method != "user.login" {
		reqBody.Auth = token
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL+apiPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}

	req.Header.Set("Content-Type", "application/json-rpc")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer c.closeResponse(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatusCode, method, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}

	return nil
}

func (c *Client) closeResponse(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to close response body")
	}
}
