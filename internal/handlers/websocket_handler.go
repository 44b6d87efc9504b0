package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"pms/internal/middleware"
	"pms/internal/services"
	"pms/pkg/events"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

// StreamMessage 推送给客户端的消息
type StreamMessage struct {
	Type  string                     `json:"type"`
	Event *events.Event              `json:"event,omitempty"`
	Data  *services.DashboardSummary `json:"data"`
}

// WebSocketHandler WebSocket处理器
type WebSocketHandler struct {
	upgrader  websocket.Upgrader
	dashboard *services.DashboardService
	broker    events.Broker
	log       *logrus.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(dashboard *services.DashboardService, broker events.Broker, allowedOrigins []string, log *logrus.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		dashboard: dashboard,
		broker:    broker,
		log:       log,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// 同源请求没有Origin
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || matchOrigin(origin, allowed) {
					return true
				}
			}
			log.Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
			return false
		},
		ReadBufferSize:  1024 * 4,
		WriteBufferSize: 1024 * 32,
	}
	return h
}

// DashboardStream 每次数据变更提交后推送最新仪表盘统计
func (h *WebSocketHandler) DashboardStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	fields := logrus.Fields{"remote_addr": c.ClientIP()}
	if identity, ok := middleware.GetIdentity(c); ok {
		fields["auth"] = identity.Kind
		fields["user_id"] = identity.UserID
		fields["api_key_id"] = identity.APIKeyID
	}
	log := h.log.WithFields(fields)
	log.Info("Dashboard stream connected")
	defer log.Info("Dashboard stream closed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 先订阅再推送首帧，避免漏掉两者之间的变更
	ch, unsubscribe, err := h.broker.Subscribe(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to subscribe to change events")
		return
	}
	defer unsubscribe()

	go h.readPump(conn, cancel)

	if err := h.push(ctx, conn, nil); err != nil {
		log.WithError(err).Warn("Failed to send initial summary")
		return
	}

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case event, ok := <-ch:
			if !ok {
				return
			}
			// 合并积压的事件，只推送一次最新统计
			event = drain(ch, event)
			if err := h.push(ctx, conn, &event); err != nil {
				log.WithError(err).Warn("Failed to push summary")
				return
			}
		}
	}
}

func (h *WebSocketHandler) push(ctx context.Context, conn *websocket.Conn, event *events.Event) error {
	summary, err := h.dashboard.Summarize(ctx)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(StreamMessage{Type: "summary", Event: event, Data: summary})
}

func drain(ch <-chan events.Event, last events.Event) events.Event {
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return last
			}
			last = e
		default:
			return last
		}
	}
}

// readPump 处理客户端消息（主要是pong和关闭帧）
func (h *WebSocketHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Debug("WebSocket unexpected close")
			}
			return
		}
	}
}

// matchOrigin 检查Origin是否匹配允许的模式，支持 *.example.com
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}

	if strings.HasPrefix(allowed, "*.") {
		domain := allowed[2:]

		originHost := origin
		if idx := strings.Index(origin, "://"); idx != -1 {
			originHost = origin[idx+3:]
		}
		if idx := strings.Index(originHost, ":"); idx != -1 {
			originHost = originHost[:idx]
		}

		return originHost == domain || strings.HasSuffix(originHost, "."+domain)
	}

	return false
}
