package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"riskengine/monitoring"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 16 << 10
)

// 消息类型
const (
	msgEvaluate = "evaluate"
	msgResult   = "result"
	msgError    = "error"
)

type liveRequest struct {
	Type string            `json:"type"`
	Form map[string]string `json:"form"`
}

type liveResponse struct {
	Type  string `json:"type"`
	HTML  string `json:"html,omitempty"`
	Error string `json:"error,omitempty"`
}

// LiveHandler 通过 websocket 在每次控件变化后重新评估整页
type LiveHandler struct {
	deps     Deps
	pages    *pageRenderer
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*liveClient]struct{}
}

// liveClient 单个连接，读写各一个协程
type liveClient struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	id     string
	ctx    context.Context
	logger *zap.Logger
}

func NewLiveHandler(deps Deps, pages *pageRenderer) *LiveHandler {
	return &LiveHandler{
		deps:  deps,
		pages: pages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients: make(map[*liveClient]struct{}),
	}
}

// ServeHTTP 升级连接并启动读写泵
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.deps.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := GetRequestID(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	client := &liveClient{
		conn:   conn,
		send:   make(chan []byte, 8),
		done:   make(chan struct{}),
		id:     id,
		ctx:    context.WithoutCancel(r.Context()),
		logger: h.deps.Logger.With(zap.String("client_id", id)),
	}
	h.register(client)

	go client.writePump()
	go client.readPump(h)
}

func (h *LiveHandler) register(c *liveClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.deps.Metrics.AddGauge(monitoring.MetricLiveConnections, "Open live evaluation connections", 1, nil)
	c.logger.Info("live client connected", zap.Int("total", total))
}

func (h *LiveHandler) unregister(c *liveClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.deps.Metrics.AddGauge(monitoring.MetricLiveConnections, "Open live evaluation connections", -1, nil)
		c.logger.Info("live client disconnected", zap.Int("total", total))
	}
}

// Clients 返回当前连接数
func (h *LiveHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll 关闭所有连接，读泵随之退出
func (h *LiveHandler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
	}
}

// handle 对一条客户端消息执行完整评估
func (h *LiveHandler) handle(c *liveClient, raw []byte) liveResponse {
	var req liveRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return liveResponse{Type: msgError, Error: "malformed message"}
	}
	if req.Type != msgEvaluate {
		return liveResponse{Type: msgError, Error: "unknown message type " + req.Type}
	}

	profile, settings, parseErr := ParseForm(formValues(req.Form), h.deps.Defaults)
	result, evalErr := evaluate(c.ctx, h.deps, profile, settings, parseErr)

	var buf bytes.Buffer
	if err := h.pages.renderResult(&buf, result); err != nil {
		c.logger.Error("render result", zap.Error(err))
		return liveResponse{Type: msgError, Error: "internal error"}
	}
	if evalErr != nil {
		msg := scoringFailedMessage
		if len(result.Errors) > 0 {
			msg = result.Errors[0]
		}
		return liveResponse{Type: msgError, HTML: buf.String(), Error: msg}
	}
	return liveResponse{Type: msgResult, HTML: buf.String()}
}

// writePump WebSocket写入泵
func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("websocket write error", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump WebSocket读取泵，唯一向 send 写入的协程
func (c *liveClient) readPump(h *LiveHandler) {
	defer func() {
		h.unregister(c)
		close(c.send)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, net.ErrClosed) {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		payload, err := json.Marshal(h.handle(c, data))
		if err != nil {
			c.logger.Error("marshal live response", zap.Error(err))
			continue
		}
		select {
		case c.send <- payload:
		case <-c.done:
			return
		}
	}
}
