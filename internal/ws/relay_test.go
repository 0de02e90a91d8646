package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ServanaApplication/servana-backend/internal/auth"
	"github.com/ServanaApplication/servana-backend/internal/mocks"
	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
)

const relayTestSecret = "relay-test-secret"

type relayFixture struct {
	server      *httptest.Server
	groupRepo   *mocks.ChatGroupRepositoryMock
	messageRepo *mocks.MessageRepositoryMock
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	groupRepo := new(mocks.ChatGroupRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	publisher := new(mocks.PublisherMock)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	handler := NewRelayHandler(NewHub(), groupRepo, messageRepo, publisher, relayTestSecret, zap.NewNop())

	r := gin.New()
	r.GET("/ws", handler.Handle)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &relayFixture{server: server, groupRepo: groupRepo, messageRepo: messageRepo}
}

func (f *relayFixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func agentToken(t *testing.T, userID int) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, auth.KindAgent, models.RoleAgent, relayTestSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func clientToken(t *testing.T, clientID int) string {
	t.Helper()
	token, err := auth.GenerateToken(clientID, auth.KindClient, 0, relayTestSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func readEvent(t *testing.T, conn *websocket.Conn) models.OutboundEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.OutboundEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func expectNoEvent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var event models.OutboundEvent
	err := conn.ReadJSON(&event)
	require.Error(t, err, "unexpected event: %+v", event)
}

func TestRelayRejectsMissingToken(t *testing.T) {
	f := newRelayFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayRoomScopedDeliveryAndOrdering(t *testing.T) {
	f := newRelayFixture(t)

	clientID := 5
	f.groupRepo.On("IDsForClient", mock.Anything, clientID).Return([]int{1}, nil).Once()
	f.groupRepo.On("GetByID", mock.Anything, 1).Return(models.ChatGroup{ID: 1, ClientID: &clientID}, nil)
	f.groupRepo.On("GetByID", mock.Anything, 2).Return(models.ChatGroup{ID: 2}, nil)

	sysUserID := 9
	saved := models.ChatMessage{ID: 77, ChatGroupID: 1, SysUserID: &sysUserID, Body: "hello there", CreatedAt: time.Now()}
	f.messageRepo.On("Create", mock.Anything, 1, repositories.AgentSender(9), "hello there").Return(saved, nil).Once()

	inRoom := f.dial(t, agentToken(t, 9))
	outOfRoom := f.dial(t, agentToken(t, 8))
	client := f.dial(t, clientToken(t, clientID))

	require.NoError(t, inRoom.WriteJSON(models.InboundEvent{Event: models.EventJoinChatGroup, ChatGroupID: 1}))
	require.NoError(t, outOfRoom.WriteJSON(models.InboundEvent{Event: models.EventJoinChatGroup, ChatGroupID: 2}))
	// Joins are acknowledged implicitly; give the server a beat to apply them.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, inRoom.WriteJSON(models.InboundEvent{Event: models.EventSendMessage, ChatGroupID: 1, ChatBody: "hello there"}))

	// The sender sees the global refresh first, then the room emission.
	first := readEvent(t, inRoom)
	require.Equal(t, models.EventUpdateChatGroups, first.Event)
	second := readEvent(t, inRoom)
	require.Equal(t, models.EventReceiveMessage, second.Event)
	require.NotNil(t, second.Message)
	assert.Equal(t, "hello there", second.Message.Body)
	assert.Equal(t, "user", second.Message.Sender())

	// The client in room 1 receives both as well.
	require.Equal(t, models.EventUpdateChatGroups, readEvent(t, client).Event)
	require.Equal(t, models.EventReceiveMessage, readEvent(t, client).Event)

	// The socket in room 2 only sees the global refresh.
	require.Equal(t, models.EventUpdateChatGroups, readEvent(t, outOfRoom).Event)
	expectNoEvent(t, outOfRoom)

	f.messageRepo.AssertExpectations(t)
}

func TestRelayDuplicateJoinSingleEmission(t *testing.T) {
	f := newRelayFixture(t)

	f.groupRepo.On("GetByID", mock.Anything, 1).Return(models.ChatGroup{ID: 1}, nil)
	sysUserID := 9
	saved := models.ChatMessage{ID: 1, ChatGroupID: 1, SysUserID: &sysUserID, Body: "once", CreatedAt: time.Now()}
	f.messageRepo.On("Create", mock.Anything, 1, repositories.AgentSender(8), "once").Return(saved, nil).Once()

	joiner := f.dial(t, agentToken(t, 9))
	sender := f.dial(t, agentToken(t, 8))

	require.NoError(t, joiner.WriteJSON(models.InboundEvent{Event: models.EventJoinChatGroup, ChatGroupID: 1}))
	require.NoError(t, joiner.WriteJSON(models.InboundEvent{Event: models.EventJoinChatGroup, ChatGroupID: 1}))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, sender.WriteJSON(models.InboundEvent{Event: models.EventSendMessage, ChatGroupID: 1, ChatBody: "once"}))

	require.Equal(t, models.EventUpdateChatGroups, readEvent(t, joiner).Event)
	require.Equal(t, models.EventReceiveMessage, readEvent(t, joiner).Event)
	// A second join must not duplicate the room emission.
	expectNoEvent(t, joiner)
}

func TestRelayPersistFailureEmitsErrorToSenderOnly(t *testing.T) {
	f := newRelayFixture(t)

	f.groupRepo.On("GetByID", mock.Anything, 1).Return(models.ChatGroup{ID: 1}, nil)
	f.messageRepo.On("Create", mock.Anything, 1, repositories.AgentSender(9), "doomed").
		Return(models.ChatMessage{}, assert.AnError).Once()

	sender := f.dial(t, agentToken(t, 9))
	bystander := f.dial(t, agentToken(t, 8))

	require.NoError(t, sender.WriteJSON(models.InboundEvent{Event: models.EventJoinChatGroup, ChatGroupID: 1}))
	require.NoError(t, bystander.WriteJSON(models.InboundEvent{Event: models.EventJoinChatGroup, ChatGroupID: 1}))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, sender.WriteJSON(models.InboundEvent{Event: models.EventSendMessage, ChatGroupID: 1, ChatBody: "doomed"}))

	event := readEvent(t, sender)
	require.Equal(t, models.EventError, event.Event)
	require.Equal(t, "message not saved", event.Reason)

	// Nothing was persisted, so nobody else hears anything.
	expectNoEvent(t, bystander)
	f.messageRepo.AssertExpectations(t)
}

func TestRelayClientCannotSendIntoForeignGroup(t *testing.T) {
	f := newRelayFixture(t)

	ownerID := 99
	f.groupRepo.On("IDsForClient", mock.Anything, 5).Return([]int{}, nil).Once()
	f.groupRepo.On("GetByID", mock.Anything, 3).Return(models.ChatGroup{ID: 3, ClientID: &ownerID}, nil)

	intruder := f.dial(t, clientToken(t, 5))
	require.NoError(t, intruder.WriteJSON(models.InboundEvent{Event: models.EventSendMessage, ChatGroupID: 3, ChatBody: "sneaky"}))

	event := readEvent(t, intruder)
	require.Equal(t, models.EventError, event.Event)
	require.Equal(t, "not authorized for chat group", event.Reason)

	f.messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayClientCannotJoinForeignGroup(t *testing.T) {
	f := newRelayFixture(t)

	ownerID := 99
	f.groupRepo.On("IDsForClient", mock.Anything, 5).Return([]int{}, nil).Once()
	f.groupRepo.On("GetByID", mock.Anything, 3).Return(models.ChatGroup{ID: 3, ClientID: &ownerID}, nil)

	intruder := f.dial(t, clientToken(t, 5))
	require.NoError(t, intruder.WriteJSON(models.InboundEvent{Event: models.EventJoinChatGroup, ChatGroupID: 3}))

	event := readEvent(t, intruder)
	require.Equal(t, models.EventError, event.Event)
	require.Equal(t, "not authorized for chat group", event.Reason)
}
