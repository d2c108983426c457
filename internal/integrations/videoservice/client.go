package videoservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
)

const serviceTokenTTL = time.Minute

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент VideoService: выдаёт и отзывает учётные данные видеосессий
// Каждый запрос подписывается короткоживущим HS256 токеном сервиса
type Client struct {
	baseURL     string
	httpClient  *http.Client
	signingKey  []byte
	serviceName string
	log         Logger
	now         func() time.Time
}

// NewClient создает новый экземпляр клиента VideoService
func NewClient(baseURL string, timeout time.Duration, signingKey, serviceName string, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		signingKey:  []byte(signingKey),
		serviceName: serviceName,
		log:         log,
		now:         time.Now,
	}
}

// IssueCredentials выдает учётные данные видеосессии для бронирования
func (c *Client) IssueCredentials(ctx context.Context, req IssueRequest) (*Credentials, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/internal/sessions", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if creds.Channel == "" || creds.Token == "" {
		return nil, fmt.Errorf("%w: empty credentials for booking_id=%d", ErrInvalidResponse, req.BookingID)
	}

	c.log.Info("VideoService issued credentials for booking_id=%d channel=%s", req.BookingID, creds.Channel)
	return &creds, nil
}

// RevokeCredentials отзывает учётные данные; отсутствующая сессия не считается ошибкой
func (c *Client) RevokeCredentials(ctx context.Context, bookingID int64) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/internal/sessions/%d", c.baseURL, bookingID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	token, err := c.serviceToken()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign service token: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("VideoService request failed: %s %s: %v", method, url, err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	return resp, nil
}

func (c *Client) serviceToken() (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"sub": c.serviceName,
		"iat": now.Unix(),
		"exp": now.Add(serviceTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
}
