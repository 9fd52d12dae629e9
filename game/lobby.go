package game

import (
	"context"
	"time"

	"github.com/himarcel99/hide-n-seek-render/logger"
)

// lobby is the room registry: one actor goroutine owning the code -> room
// map, fanning the shared tickers out to every room and answering
// member-lookup requests. Rooms never touch the map themselves.
type lobby struct {
	rooms        map[string]Room
	descriptions map[string]roomDescription

	addAndRunRoomChan chan Room
	removeRoomChan    chan string
	roomDescUpdate    chan roomDescription
	roomJoinReqs      chan roomJoinRequest
	memberLookupReqs  chan memberLookupRequest

	idGenerator   UniqueIdGenerator
	tickerCreator PeriodicTickerChannelCreator
}

type memberLookupRequest struct {
	playerId string
	respChan chan string
}

func NewLobby(idgen UniqueIdGenerator, tickerCreator PeriodicTickerChannelCreator) *lobby {
	return &lobby{
		rooms:             map[string]Room{},
		descriptions:      map[string]roomDescription{},
		addAndRunRoomChan: make(chan Room, 32),
		removeRoomChan:    make(chan string, 32),
		roomDescUpdate:    make(chan roomDescription, 256),
		roomJoinReqs:      make(chan roomJoinRequest, 256),
		memberLookupReqs:  make(chan memberLookupRequest, 256),
		idGenerator:       idgen,
		tickerCreator:     tickerCreator,
	}
}

func (l *lobby) RequestAddAndRunRoom(ctx context.Context, r Room) {
	select {
	case l.addAndRunRoomChan <- r:
	case <-ctx.Done():
	}
}

func (l *lobby) ForwardPlayerJoinRequestToRoom(ctx context.Context, jreq roomJoinRequest) {
	select {
	case l.roomJoinReqs <- jreq:
	case <-ctx.Done():
	}
}

func (l *lobby) RequestUpdateDescription(desc roomDescription) {
	select {
	case l.roomDescUpdate <- desc:
	default:
	}
}

func (l *lobby) RemoveRoom(roomId string) {
	l.removeRoomChan <- roomId
}

// FindRoomByMember resolves the room code owning a connection id, or
// ErrMemberNotFound. A linear scan over the room descriptions is fine at
// the scale of one process worth of party rooms.
func (l *lobby) FindRoomByMember(ctx context.Context, playerId string) (string, error) {
	respChan := make(chan string, 1)
	select {
	case l.memberLookupReqs <- memberLookupRequest{playerId: playerId, respChan: respChan}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case roomId := <-respChan:
		if roomId == "" {
			return "", ErrMemberNotFound
		}
		return roomId, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *lobby) LobbyActor(started chan struct{}) {
	roomTicker := l.tickerCreator.Create(time.Second)
	pingTicker := l.tickerCreator.Create(time.Second * 30)

	close(started)

	for {
		select {
		case now := <-roomTicker:
			for _, r := range l.rooms {
				r.Tick(now)
			}

		case <-pingTicker:
			for _, r := range l.rooms {
				r.PingPlayers()
			}

		case room := <-l.addAndRunRoomChan:
			l.handleAddAndRunRoom(room)

		case roomId := <-l.removeRoomChan:
			l.handleRemoveRoom(roomId)

		case desc := <-l.roomDescUpdate:
			l.descriptions[desc.id] = desc

		case jreq := <-l.roomJoinReqs:
			l.handleJoinReq(jreq)

		case lookup := <-l.memberLookupReqs:
			l.handleMemberLookup(lookup)
		}
	}
}

func (l *lobby) handleAddAndRunRoom(r Room) {
	id := l.idGenerator.Generate()
	r.SetId(id)
	r.SetParentLobby(l)

	l.rooms[id] = r
	l.descriptions[id] = r.Description()
	go r.GameLoop()
	logger.Infof("[Lobby] Room %s registered, %d rooms live", id, len(l.rooms))
}

func (l *lobby) handleRemoveRoom(toRemoveId string) {
	room, ok := l.rooms[toRemoveId]
	if !ok {
		return
	}
	delete(l.rooms, toRemoveId)
	delete(l.descriptions, toRemoveId)
	room.CloseAndRelease()
	l.idGenerator.Dispose(toRemoveId)
	logger.Infof("[Lobby] Room %s released, %d rooms live", toRemoveId, len(l.rooms))
}

func (l *lobby) handleJoinReq(jreq roomJoinRequest) {
	room, ok := l.rooms[jreq.roomId]
	if !ok {
		jreq.errChan <- ErrRoomNotFound
		close(jreq.errChan)
		return
	}
	room.RequestJoin(jreq)
}

func (l *lobby) handleMemberLookup(lookup memberLookupRequest) {
	for roomId, desc := range l.descriptions {
		for _, memberId := range desc.memberIds {
			if memberId == lookup.playerId {
				lookup.respChan <- roomId
				return
			}
		}
	}
	lookup.respChan <- ""
}
