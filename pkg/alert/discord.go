package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/siege-spider/spider-backend/pkg/logger"
)

// embed 왼쪽 색상 (빨강)
const exceptionColor = 16734310

// Alerter 예외 알림 전송 대상
type Alerter interface {
	SendException(title string, err error)
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// DiscordWebhook Discord 웹훅으로 예외 알림 전송 (fire-and-forget)
type DiscordWebhook struct {
	url    string
	client *http.Client
}

// NewDiscordWebhook url 이 비어 있으면 로그만 남긴다
func NewDiscordWebhook(url string) *DiscordWebhook {
	return &DiscordWebhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// SendException 비동기로 전송하고 즉시 반환
func (d *DiscordWebhook) SendException(title string, err error) {
	if d.url == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if sendErr := d.Send(ctx, title, err); sendErr != nil {
			logger.Error("Failed to send webhook", "title", title, "error", sendErr)
		}
	}()
}

// Send 동기 전송
func (d *DiscordWebhook) Send(ctx context.Context, title string, err error) error {
	body, marshalErr := json.Marshal(webhookPayload{
		Embeds: []embed{{
			Title:       title,
			Description: fmt.Sprintf("```\n%v```", err),
			Color:       exceptionColor,
		}},
	})
	if marshalErr != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", marshalErr)
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if reqErr != nil {
		return fmt.Errorf("failed to build webhook request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, doErr := d.client.Do(req)
	if doErr != nil {
		return fmt.Errorf("webhook request failed: %w", doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	logger.Debug("Webhook sent successfully", "title", title)
	return nil
}

// Nop 알림을 보내지 않는 Alerter
type Nop struct{}

func (Nop) SendException(string, error) {}
