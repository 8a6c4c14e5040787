package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"petstore-backend/internal/config"
)

type StripeClient interface {
	CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSessionResult, error)
}

type stripeClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	secretKey  string
}

type LineItem struct {
	Name        string
	Description string
	ImageURL    string
	// Minor currency units (cents).
	UnitAmount int64
	Quantity   int32
}

type CheckoutSessionParams struct {
	LineItems     []LineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSessionResult struct {
	SessionID string
	URL       string
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: stripeCfg.BaseApiURL,
		secretKey:  stripeCfg.SecretKey,
	}
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSessionResult, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Add("payment_method_types[]", "card")
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
		if item.ImageURL != "" {
			form.Add(prefix+"[price_data][product_data][images][]", item.ImageURL)
		}
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.FormatInt(int64(item.Quantity), 10))
	}

	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseApiURL+"/v1/checkout/sessions",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stripe error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	return &CheckoutSessionResult{
		SessionID: result.ID,
		URL:       result.URL,
	}, nil
}
