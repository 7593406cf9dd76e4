package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/siege-spider/spider-backend/internal/models"
)

// ErrNotFound 프로필 서비스에 해당 플레이어가 없음
var ErrNotFound = errors.New("player profile not found")

// Client 외부 플레이어 프로필 서비스 HTTP 클라이언트
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient 프로필 서비스 클라이언트 생성
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// LookupByID 프로필 ID 로 조회
func (c *Client) LookupByID(ctx context.Context, profileID string) (*models.PlayerProfile, error) {
	return c.get(ctx, "/profiles/"+url.PathEscape(profileID))
}

// LookupByHandle 닉네임으로 조회
func (c *Client) LookupByHandle(ctx context.Context, handle string) (*models.PlayerProfile, error) {
	return c.get(ctx, "/profiles?handle="+url.QueryEscape(handle))
}

func (c *Client) get(ctx context.Context, path string) (*models.PlayerProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("profile service returned status %d", resp.StatusCode)
	}

	var p models.PlayerProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if p.ProfileID == "" {
		return nil, ErrNotFound
	}

	return &p, nil
}
