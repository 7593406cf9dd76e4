package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/siege-spider/spider-backend/internal/models"
	"github.com/siege-spider/spider-backend/pkg/logger"
)

// MessageTypeMatchIngested 새 매치 저장 알림
const MessageTypeMatchIngested = "match_ingested"

// Hub WebSocket 연결 관리 및 브로드캐스트
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex

	// 브로드캐스트 채널
	broadcast chan *Message

	// 등록/해제 채널
	register   chan *Client
	unregister chan *Client

	// Run 종료 시 닫힌다
	done chan struct{}
}

// Message WebSocket 메시지
type Message struct {
	Type    string      `json:"type"`    // 메시지 타입
	Payload interface{} `json:"payload"` // 메시지 내용
}

// MatchIngestedEvent match_ingested 페이로드
type MatchIngestedEvent struct {
	ID        string       `json:"id"`
	Teams     models.Teams `json:"teams"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run ctx 가 끝날 때까지 Hub 실행
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient 클라이언트 등록
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = struct{}{}
	logger.Info("WebSocket client registered",
		"user", client.userID,
		"totalClients", len(h.clients))
}

// unregisterClient 클라이언트 해제
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client]; exists {
		delete(h.clients, client)
		close(client.send)
		logger.Info("WebSocket client unregistered",
			"user", client.userID,
			"totalClients", len(h.clients))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// broadcastMessage 메시지 브로드캐스트
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// 채널이 가득 찬 클라이언트는 끊는다
			logger.Warn("Client send channel full, dropping connection", "user", client.userID)
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ClientCount 현재 연결 수
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast 모든 연결에 메시지 전송. 큐가 가득 차면 버린다 (수집 요청을 막지 않는다)
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	select {
	case h.broadcast <- &Message{Type: msgType, Payload: payload}:
	default:
		logger.Warn("WebSocket broadcast queue full, dropping message", "type", msgType)
	}
}

// NotifyMatchIngested 새 매치 알림
func (h *Hub) NotifyMatchIngested(match *models.Match) {
	h.Broadcast(MessageTypeMatchIngested, MatchIngestedEvent{
		ID:        match.ID,
		Teams:     match.Teams,
		CreatedAt: match.CreatedAt,
	})
}
