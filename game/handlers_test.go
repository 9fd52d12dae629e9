package game

import (
	"encoding/json"
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
)

func setupHandlerServer(t *testing.T, lobby Lobby) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	h := NewGameHandler(lobby)
	r.GET("/game/create", h.CreateGameHandler)
	r.GET("/game/join/:roomid", h.JoinGameHandler)
	r.GET("/game/room-of/:playerid", h.RoomOfMemberHandler)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestCreateGameHandler_OpensRoomWithHostSeated(t *testing.T) {
	lobby := &MockLobby{}
	registered := make(chan Room, 1)
	lobby.On("RequestAddAndRunRoom", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		registered <- args.Get(1).(Room)
	}).Return().Once()

	srv := setupHandlerServer(t, lobby)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/game/create"), nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case room := <-registered:
		desc := room.Description()
		assert.Equal(t, 1, desc.playersCount)
		assert.False(t, desc.started)
		assert.Len(t, desc.memberIds, 1)
		assert.NotEmpty(t, desc.memberIds[0])
	case <-time.After(time.Second):
		t.Fatal("room was never handed to the lobby")
	}
	lobby.AssertExpectations(t)
}

func TestJoinGameHandler_ForwardsAndWiresPumps(t *testing.T) {
	lobby := &MockLobby{}
	room := &MockRoom{}

	// Stand in for the room actor: accept the join and seat the player.
	lobby.On("ForwardPlayerJoinRequestToRoom", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		jreq := args.Get(1).(roomJoinRequest)
		assert.Equal(t, "AAAA", jreq.roomId)
		jreq.player.SetRoom(room)
		close(jreq.errChan)
	}).Return().Once()

	forwarded := make(chan ClientPacketEnvelope, 1)
	room.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		forwarded <- args.Get(1).(ClientPacketEnvelope)
	}).Return().Once()
	room.On("RemoveMe", mock.Anything, mock.Anything).Return().Maybe()

	srv := setupHandlerServer(t, lobby)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/game/join/AAAA"), nil)
	require.NoError(t, err)
	defer conn.Close()

	// A packet written by the client must flow through the read pump.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"confirm_hidden"}`)))

	select {
	case envelope := <-forwarded:
		assert.Equal(t, PACKET_CONFIRM_HIDDEN, envelope.clientPacket.Type)
	case <-time.After(time.Second):
		t.Fatal("client packet never reached the room")
	}
}

func TestJoinGameHandler_UnknownRoomGetsErrorPacket(t *testing.T) {
	lobby := &MockLobby{}
	lobby.On("ForwardPlayerJoinRequestToRoom", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		jreq := args.Get(1).(roomJoinRequest)
		jreq.errChan <- ErrRoomNotFound
		close(jreq.errChan)
	}).Return().Once()

	srv := setupHandlerServer(t, lobby)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/game/join/ZZZZ"), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var packet ErrorPacket
	require.NoError(t, json.Unmarshal(data, &packet))
	assert.Equal(t, PACKET_ERROR, packet.Type)
	assert.Equal(t, ErrRoomNotFound.Error(), packet.Message)

	// The server closes the socket after refusing the join.
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestRoomOfMemberHandler_Found(t *testing.T) {
	lobby := &MockLobby{}
	lobby.On("FindRoomByMember", mock.Anything, "player-1").Return("AAAA", nil).Once()

	srv := setupHandlerServer(t, lobby)
	resp, err := http.Get(srv.URL + "/game/room-of/player-1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "AAAA", body["roomCode"])
}

func TestRoomOfMemberHandler_NotFound(t *testing.T) {
	lobby := &MockLobby{}
	lobby.On("FindRoomByMember", mock.Anything, "stranger").Return("", ErrMemberNotFound).Once()

	srv := setupHandlerServer(t, lobby)
	resp, err := http.Get(srv.URL + "/game/room-of/stranger")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ErrMemberNotFound.Error(), body["error"])
}

func TestGorillaWrapper_RoundTrip(t *testing.T) {
	// An echo peer on the server side of a real upgraded connection.
	serverReady := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverReady <- conn
	}))
	t.Cleanup(srv.Close)

	clientConn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)

	var serverConn *websocket.Conn
	select {
	case serverConn = <-serverReady:
	case <-time.After(time.Second):
		t.Fatal("server side never upgraded")
	}

	wrapper := NewGorillaWebSocketWrapper(clientConn)

	require.NoError(t, wrapper.Write([]byte("hello")))
	_, data, err := serverConn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage, []byte("world")))
	data, err = wrapper.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), data)

	require.NoError(t, wrapper.Ping())

	wrapper.Close()
	serverConn.SetReadDeadline(time.Now().Add(time.Second))
	for {
		if _, _, err := serverConn.ReadMessage(); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "expected a normal close, got %v", err)
			break
		}
	}
}
