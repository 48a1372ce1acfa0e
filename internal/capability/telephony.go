package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultVapiURL is the Vapi API base URL.
const DefaultVapiURL = "https://api.vapi.ai"

// VapiClient implements Telephony against the Vapi voice API.
type VapiClient struct {
	baseURL       string
	apiKey        string
	phoneNumberID string
	httpClient    *http.Client
}

// VapiConfig configures a VapiClient.
type VapiConfig struct {
	// APIKey is the Vapi private key. Required.
	APIKey string
	// PhoneNumberID is the provisioned outbound number id. Required.
	PhoneNumberID string
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
}

// NewVapiClient creates a Vapi-backed Telephony client.
// Missing credentials are a fail-fast configuration error.
func NewVapiClient(cfg VapiConfig) (*VapiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vapi: API key is not set")
	}
	if cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("vapi: phone number id is not set")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultVapiURL
	}
	return &VapiClient{
		baseURL:       baseURL,
		apiKey:        cfg.APIKey,
		phoneNumberID: cfg.PhoneNumberID,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Call places an outbound call that opens with the given summary.
func (c *VapiClient) Call(ctx context.Context, number, summary string) (CallResult, error) {
	body := map[string]any{
		"phoneNumberId": c.phoneNumberID,
		"customer": map[string]any{
			"number": number,
		},
		"assistant": map[string]any{
			"firstMessage": summary,
		},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return CallResult{}, fmt.Errorf("vapi: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call", bytes.NewReader(raw))
	if err != nil {
		return CallResult{}, fmt.Errorf("vapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CallResult{}, fmt.Errorf("vapi: call request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return CallResult{}, fmt.Errorf("vapi: API returned status %d: %s", resp.StatusCode, detail)
	}

	var parsed struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return CallResult{}, fmt.Errorf("vapi: decode response: %w", err)
	}

	return CallResult{CallID: parsed.ID, Status: parsed.Status}, nil
}
