package game

import (
	"context"
	"time"
)

// WebsocketConnection abstracts the transport so the pumps and the room can
// be tested without a real socket.
type WebsocketConnection interface {
	Close()
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

type Player interface {
	Id() string
	Send(data []byte) error
	Ping() error
	SetRoom(r Room)
	CancelAndRelease()
}

type Room interface {
	Tick(now time.Time)
	PingPlayers()
	Send(ctx context.Context, envelope ClientPacketEnvelope)
	RequestJoin(jreq roomJoinRequest)
	RemoveMe(ctx context.Context, p Player)
	GameLoop()
	CloseAndRelease()
	Description() roomDescription
	SetParentLobby(l Lobby)
	SetId(id string)
}

type Lobby interface {
	RequestAddAndRunRoom(ctx context.Context, r Room)
	ForwardPlayerJoinRequestToRoom(ctx context.Context, jreq roomJoinRequest)
	RequestUpdateDescription(desc roomDescription)
	RemoveRoom(roomId string)
	FindRoomByMember(ctx context.Context, playerId string) (string, error)
}

type UniqueIdGenerator interface {
	Generate() string
	Dispose(id string)
}

type PeriodicTickerChannelCreator interface {
	Create(duration time.Duration) <-chan time.Time
}

type roomJoinRequest struct {
	roomId  string
	player  Player
	errChan chan error
}

func NewRoomJoinRequest(roomId string, player Player) roomJoinRequest {
	return roomJoinRequest{roomId: roomId, player: player, errChan: make(chan error, 1)}
}

// roomDescription is the lobby's view of a room, refreshed by the room on
// every membership or phase change. memberIds backs FindRoomByMember.
type roomDescription struct {
	id           string
	playersCount int
	started      bool
	memberIds    []string
}
