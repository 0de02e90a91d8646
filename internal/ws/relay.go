package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/ServanaApplication/servana-backend/internal/auth"
	"github.com/ServanaApplication/servana-backend/internal/middleware"
	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/observability"
	"github.com/ServanaApplication/servana-backend/internal/rabbitmq"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

// RelayHandler owns the single websocket endpoint shared by the agent console
// and the client app. Connections authenticate before the upgrade, join chat
// group rooms explicitly, and exchange chat events until disconnect.
type RelayHandler struct {
	hub         *Hub
	groupRepo   repositories.ChatGroupRepository
	messageRepo repositories.MessageRepository
	publisher   rabbitmq.Publisher
	secret      string
	logger      *zap.Logger
}

// NewRelayHandler constructs a RelayHandler.
func NewRelayHandler(hub *Hub, groupRepo repositories.ChatGroupRepository, messageRepo repositories.MessageRepository, publisher rabbitmq.Publisher, secret string, logger *zap.Logger) *RelayHandler {
	return &RelayHandler{
		hub:         hub,
		groupRepo:   groupRepo,
		messageRepo: messageRepo,
		publisher:   publisher,
		secret:      secret,
		logger:      logger,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates, upgrades, and runs the event loop for one connection.
func (h *RelayHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("servana-backend/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	claims, err := h.authenticate(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		Kind:        claims.Kind,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	if claims.Kind == auth.KindClient {
		info.ClientID = claims.UserID
	} else {
		info.UserID = claims.UserID
	}
	h.hub.Register(conn, info)

	observability.IncWSActive(info.Kind)
	observability.IncWSEvent(info.Kind, "ws_connect")
	h.publishLifecycle(c, info, "ws_connect", "")

	// Client connections land in their own conversation room right away so
	// reconnects never miss messages waiting on an explicit join.
	if info.ClientID != 0 {
		if ids, err := h.groupRepo.IDsForClient(ctx, info.ClientID); err == nil {
			for _, id := range ids {
				h.hub.JoinRoom(id, conn)
			}
		}
	}

	var closeReason string
	defer func() {
		if _, ok := h.hub.Unregister(conn); ok {
			observability.DecWSActive(info.Kind)
		}
		observability.IncWSEvent(info.Kind, "ws_disconnect")
		h.publishLifecycle(c, info, "ws_disconnect", closeReason)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent(info.Kind, "ws_error")
			}
			return
		}

		var event models.InboundEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			h.hub.EmitTo(conn, models.OutboundEvent{Event: models.EventError, Reason: "malformed event"})
			continue
		}

		switch event.Event {
		case models.EventJoinChatGroup:
			h.handleJoin(c, conn, info, event)
		case models.EventSendMessage:
			h.handleSend(c, conn, info, event)
		default:
			h.hub.EmitTo(conn, models.OutboundEvent{Event: models.EventError, Reason: "unknown event"})
		}
	}
}

func (h *RelayHandler) handleJoin(c *gin.Context, conn *websocket.Conn, info ConnInfo, event models.InboundEvent) {
	ctx := c.Request.Context()
	group, err := h.groupRepo.GetByID(ctx, event.ChatGroupID)
	if err != nil {
		h.hub.EmitTo(conn, models.OutboundEvent{Event: models.EventError, Reason: "chat group not found"})
		return
	}
	// Clients may only join their own conversation. Agents roam freely.
	if info.ClientID != 0 && (group.ClientID == nil || *group.ClientID != info.ClientID) {
		h.hub.EmitTo(conn, models.OutboundEvent{Event: models.EventError, Reason: "not authorized for chat group"})
		return
	}
	h.hub.JoinRoom(event.ChatGroupID, conn)
	observability.IncWSEvent(info.Kind, "join_chat_group")
}

func (h *RelayHandler) handleSend(c *gin.Context, conn *websocket.Conn, info ConnInfo, event models.InboundEvent) {
	ctx := c.Request.Context()
	if event.ChatBody == "" {
		h.hub.EmitTo(conn, models.OutboundEvent{Event: models.EventError, Reason: "empty message"})
		return
	}
	// Same ownership rule as join: clients write only into their own conversation.
	if info.ClientID != 0 {
		group, err := h.groupRepo.GetByID(ctx, event.ChatGroupID)
		if err != nil {
			h.hub.EmitTo(conn, models.OutboundEvent{Event: models.EventError, Reason: "chat group not found"})
			return
		}
		if group.ClientID == nil || *group.ClientID != info.ClientID {
			h.hub.EmitTo(conn, models.OutboundEvent{Event: models.EventError, Reason: "not authorized for chat group"})
			return
		}
	}

	var sender repositories.SenderRef
	if info.ClientID != 0 {
		sender = repositories.ClientSender(info.ClientID)
	} else {
		sender = repositories.AgentSender(info.UserID)
	}

	msg, err := h.messageRepo.Create(ctx, event.ChatGroupID, sender, event.ChatBody)
	if err != nil {
		h.logger.Error("message persist failed",
			zap.Int("chat_group_id", event.ChatGroupID),
			zap.String("conn_id", info.ConnID),
			zap.Error(err))
		observability.IncWSEvent(info.Kind, "persist_error")
		h.hub.EmitTo(conn, models.OutboundEvent{Event: models.EventError, Reason: "message not saved"})
		return
	}

	observability.IncRelayedMessage(msg.Sender())
	h.hub.BroadcastAll(models.OutboundEvent{Event: models.EventUpdateChatGroups})
	h.hub.BroadcastRoom(event.ChatGroupID, models.OutboundEvent{Event: models.EventReceiveMessage, Message: &msg})
}

func (h *RelayHandler) authenticate(c *gin.Context) (*auth.Claims, error) {
	token, err := c.Cookie(middleware.AccessCookie)
	if err != nil || token == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		} else {
			token = c.Query("token")
		}
	}
	return auth.ParseToken(token, h.secret)
}

func (h *RelayHandler) publishLifecycle(c *gin.Context, info ConnInfo, event, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        info.Kind,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"client_id": info.ClientID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
	_ = h.publisher.Publish(c.Request.Context(), "ws_events.relay", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	})
}
