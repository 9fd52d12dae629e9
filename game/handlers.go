package game

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/himarcel99/hide-n-seek-render/logger"
)

const joinReplyTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The engine-level origin allow-list already ran.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type GameHandler struct {
	lobby Lobby
}

func NewGameHandler(lobby Lobby) *GameHandler {
	return &GameHandler{lobby: lobby}
}

// CreateGameHandler upgrades the caller and opens a fresh room with them
// seated as the hider. The room starts running once the lobby assigns a code.
func (h *GameHandler) CreateGameHandler(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "websocket-upgrade-failed"})
		return
	}
	socket := NewGorillaWebSocketWrapper(conn)

	host := NewPlayer(uuid.NewString())
	room := NewRoom(host, NewSoundAssigner())
	host.SetRoom(room)

	// Background: the request context dies with the hijacked connection.
	h.lobby.RequestAddAndRunRoom(context.Background(), room)

	go host.ReadPump(socket)
	go host.WritePump(socket)
	logger.Infof("[Game] Player %s created a room", host.Id())
}

// JoinGameHandler upgrades the caller, then forwards a join request for the
// given room code. Join failures arrive on the already-upgraded socket as an
// error packet, since there is no HTTP response left to refuse with.
func (h *GameHandler) JoinGameHandler(ctx *gin.Context) {
	roomId := ctx.Param("roomid")

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "websocket-upgrade-failed"})
		return
	}
	socket := NewGorillaWebSocketWrapper(conn)

	joiner := NewPlayer(uuid.NewString())
	jreq := NewRoomJoinRequest(roomId, joiner)
	h.lobby.ForwardPlayerJoinRequestToRoom(context.Background(), jreq)

	select {
	case joinErr := <-jreq.errChan:
		if joinErr != nil {
			socket.Write(MakePacketError(joinErr.Error()))
			socket.Close()
			return
		}
	case <-time.After(joinReplyTimeout):
		socket.Write(MakePacketError(ErrRoomNotFound.Error()))
		socket.Close()
		return
	}

	go joiner.ReadPump(socket)
	go joiner.WritePump(socket)
	logger.Infof("[Game] Player %s joined room %s", joiner.Id(), roomId)
}

// RoomOfMemberHandler resolves which room, if any, owns a connection id.
func (h *GameHandler) RoomOfMemberHandler(ctx *gin.Context) {
	playerId := ctx.Param("playerid")

	lookupCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	roomId, err := h.lobby.FindRoomByMember(lookupCtx, playerId)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": ErrMemberNotFound.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "lookup-failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"roomCode": roomId})
}
