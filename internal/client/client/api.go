package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/perfumekeeper/internal/client/models"
	"github.com/dmitrijs2005/perfumekeeper/internal/common"
)

// Client is the server surface used by the CLI services.
type Client interface {
	Register(ctx context.Context, name, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
	ListPerfumes(ctx context.Context, token string) ([]models.Perfume, error)
	CreatePerfume(ctx context.Context, token string, d models.PerfumeDraft) (*models.Perfume, error)
	UpdatePerfume(ctx context.Context, token string, id int64, c models.PerfumeChanges) (*models.Perfume, error)
	DeletePerfume(ctx context.Context, token string, id int64) error
}

type APIClient struct {
	baseURL string
	http    *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: timeout},
	}
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenReply struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (c *APIClient) Register(ctx context.Context, name, email, password string) (*models.Account, error) {
	var acc models.Account
	err := c.do(ctx, http.MethodPost, "/auth/register", "", credentials{Name: name, Email: email, Password: password}, &acc)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (c *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	var reply tokenReply
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", credentials{Email: email, Password: password}, &reply); err != nil {
		return "", err
	}
	if reply.AccessToken == "" || !strings.EqualFold(reply.TokenType, common.TokenType) {
		return "", fmt.Errorf("unexpected token reply (type %q)", reply.TokenType)
	}
	return reply.AccessToken, nil
}

func (c *APIClient) ListPerfumes(ctx context.Context, token string) ([]models.Perfume, error) {
	items := []models.Perfume{}
	if err := c.do(ctx, http.MethodGet, "/perfumes", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *APIClient) CreatePerfume(ctx context.Context, token string, d models.PerfumeDraft) (*models.Perfume, error) {
	var p models.Perfume
	if err := c.do(ctx, http.MethodPost, "/perfumes", token, d, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *APIClient) UpdatePerfume(ctx context.Context, token string, id int64, ch models.PerfumeChanges) (*models.Perfume, error) {
	var p models.Perfume
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/perfumes/%d", id), token, ch, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *APIClient) DeletePerfume(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/perfumes/%d", id), token, nil, nil)
}

// do sends one JSON request. Transport failures wrap ErrUnavailable; non-2xx
// replies come back as *APIError.
func (c *APIClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
