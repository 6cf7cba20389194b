package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// API is the slice of the provider we depend on: create a billing agreement
// and execute it after user approval. Webhooks arrive on their own.
type API interface {
	CreateBillingAgreement(ctx context.Context, req *AgreementRequest) (*Agreement, error)
	ExecuteBillingAgreement(ctx context.Context, token string) (*Agreement, error)
}

type AgreementRequest struct {
	PlanId      string
	Name        string
	Description string
	ReturnURL   string
	CancelURL   string
}

type Agreement struct {
	Id         string
	State      string
	ApproveURL string
}

type Config struct {
	BaseURL    string
	ClientId   string
	Secret     string
	HTTPClient *http.Client
}

type Client struct {
	baseURL  string
	clientId string
	secret   string
	http     *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		clientId: cfg.ClientId,
		secret:   cfg.Secret,
		http:     httpClient,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type linkObject struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type agreementResponse struct {
	Id    string       `json:"id"`
	State string       `json:"state"`
	Links []linkObject `json:"links"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientId, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := c.do(req, &tok); err != nil {
		return "", fmt.Errorf("fetch oauth token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("fetch oauth token: empty access_token")
	}

	c.token = tok.AccessToken
	// Refresh a minute early so in-flight calls never hit an expired token.
	c.tokenExp = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

func (c *Client) CreateBillingAgreement(ctx context.Context, agreement *AgreementRequest) (*Agreement, error) {
	payload := map[string]interface{}{
		"name":        agreement.Name,
		"description": agreement.Description,
		// Provider requires a future start date; first cycle starts after approval.
		"start_date": time.Now().Add(time.Minute).UTC().Format(time.RFC3339),
		"plan": map[string]string{
			"id": agreement.PlanId,
		},
		"payer": map[string]string{
			"payment_method": "paypal",
		},
		"override_merchant_preferences": map[string]string{
			"return_url": agreement.ReturnURL,
			"cancel_url": agreement.CancelURL,
		},
	}

	var res agreementResponse
	if err := c.post(ctx, "/v1/payments/billing-agreements", payload, &res); err != nil {
		return nil, fmt.Errorf("create billing agreement: %w", err)
	}

	out := &Agreement{Id: res.Id, State: res.State}
	for _, link := range res.Links {
		if link.Rel == "approval_url" {
			out.ApproveURL = link.Href
			break
		}
	}
	if out.ApproveURL == "" {
		return nil, fmt.Errorf("create billing agreement: response has no approval_url link")
	}
	return out, nil
}

func (c *Client) ExecuteBillingAgreement(ctx context.Context, token string) (*Agreement, error) {
	path := fmt.Sprintf("/v1/payments/billing-agreements/%s/agreement-execute", url.PathEscape(token))

	var res agreementResponse
	if err := c.post(ctx, path, map[string]interface{}{}, &res); err != nil {
		return nil, fmt.Errorf("execute billing agreement: %w", err)
	}
	return &Agreement{Id: res.Id, State: res.State}, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(bodyBytes, out)
}
