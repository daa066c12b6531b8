// Package identityprovider реализует HTTP-клиент административного API
// внешнего identity-провайдера: листинг и создание пользователей, отправка
// magic-link писем и обмен кода/refresh-токена на сессию.
package identityprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ErrEmailExists провайдер сообщил, что пользователь с таким email уже есть.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidCredentials код или токен не приняты провайдером
// (просрочены, уже использованы или подделаны).
var ErrInvalidCredentials = errors.New("invalid or expired credentials")

type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient создаёт клиент identity-провайдера с сервисным ключом.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path, bearer string, body any) (*http.Request, error) {
	url := c.baseURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		_ = json.Unmarshal(raw, &apiErr)
		switch {
		case apiErr.ErrorCode == "email_exists":
			return ErrEmailExists
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.Message)
		default:
			return fmt.Errorf("identity provider: unexpected status %s: %s", resp.Status, apiErr.Message)
		}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListUsers возвращает страницу пользователей. Провайдер не умеет искать по
// email, поэтому поиск делается постраничным обходом на стороне приложения.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]User, error) {
	path := "/admin/users?page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(perPage)
	req, err := c.newRequest(ctx, http.MethodGet, path, c.serviceKey, nil)
	if err != nil {
		return nil, err
	}
	var out listUsersResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// CreateUser создает пользователя через административный API.
// Конфликт по email возвращается как ErrEmailExists.
func (c *Client) CreateUser(ctx context.Context, email, password string, emailConfirm bool) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/admin/users", c.serviceKey, createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: emailConfirm,
	})
	if err != nil {
		return nil, err
	}
	var out User
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserFromToken возвращает пользователя текущей сессии по access-токену.
func (c *Client) UserFromToken(ctx context.Context, accessToken string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/user", accessToken, nil)
	if err != nil {
		return nil, err
	}
	var out User
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMagicLink просит провайдера отправить письмо со ссылкой для входа.
func (c *Client) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/otp", c.serviceKey, magicLinkRequest{
		Email:      email,
		RedirectTo: redirectTo,
	})
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ExchangeCode обменивает одноразовый код из magic-link на сессию.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/token?grant_type=code", c.serviceKey, exchangeCodeRequest{
		AuthCode: code,
	})
	if err != nil {
		return nil, err
	}
	var out Session
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshSession обменивает refresh-токен на новую пару токенов.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/token?grant_type=refresh_token", c.serviceKey, refreshTokenRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}
	var out Session
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
