// Package paymentprovider реализует HTTP-клиент платёжного провайдера
// и проверку подписи его вебхуков.
package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент API платёжного провайдера.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values) (*http.Request, error) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("unexpected status: " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetCustomer возвращает покупателя по его идентификатору.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/customers/"+customerID, nil)
	if err != nil {
		return nil, err
	}
	var out Customer
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSubscription возвращает детальную запись подписки у провайдера.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return nil, err
	}
	var out Subscription
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCheckoutSession создает checkout-сессию в режиме подписки
// и возвращает URL платёжной страницы провайдера.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSessionResponse, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.AllowPromotionCodes {
		form.Set("allow_promotion_codes", "true")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}
	var out CheckoutSessionResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
