package game

import (
	"context"
	"encoding/json"

	"golang.org/x/time/rate"

	"github.com/himarcel99/hide-n-seek-render/logger"
)

type player struct {
	id          string
	rateLimiter *rate.Limiter
	inbox       chan []byte
	pingChan    chan struct{}
	room        Room
	ctx         context.Context
	cancelCtx   context.CancelFunc
}

func NewPlayer(id string) *player {
	ctx, cancel := context.WithCancel(context.Background())
	return &player{
		id:          id,
		rateLimiter: rate.NewLimiter(1, 5),
		inbox:       make(chan []byte, 256),
		pingChan:    make(chan struct{}, 1),
		ctx:         ctx,
		cancelCtx:   cancel,
	}
}

func (p *player) Id() string {
	return p.id
}

// SetRoom must happen before the pumps start; the room field is read without
// synchronization afterwards.
func (p *player) SetRoom(r Room) {
	p.room = r
}

// Send queues data for the write pump. It never blocks: the room actor calls
// it while holding no way to wait on a slow consumer.
func (p *player) Send(data []byte) error {
	select {
	case <-p.ctx.Done():
		return ErrPlayerReleased
	default:
	}
	select {
	case p.inbox <- data:
		return nil
	default:
		return ErrSendBacklog
	}
}

func (p *player) Ping() error {
	select {
	case <-p.ctx.Done():
		return ErrPlayerReleased
	default:
	}
	select {
	case p.pingChan <- struct{}{}:
	default:
	}
	return nil
}

// CancelAndRelease unblocks both pumps through the context. The channels are
// never closed, so a Send or Ping racing the release cannot panic.
func (p *player) CancelAndRelease() {
	p.cancelCtx()
}

func (p *player) requestRemoval() {
	if p.room == nil {
		return
	}
	p.room.RemoveMe(p.ctx, p)
}

// rateLimited reports whether a packet type counts against the player's
// token bucket. Gameplay-critical packets are never throttled.
func rateLimited(packetType string) bool {
	switch packetType {
	case PACKET_UPDATE_SETTINGS, PACKET_PLAY_AGAIN:
		return true
	}
	return false
}

func (p *player) ReadPump(socket WebsocketConnection) {
	defer func() {
		socket.Close()
		p.requestRemoval()
	}()

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		data, err := socket.Read()
		if err != nil {
			return
		}

		var packet ClientPacket
		if err := json.Unmarshal(data, &packet); err != nil {
			logger.Debugf("[Player %s] Dropping unparsable packet: %v", p.id, err)
			continue
		}

		if rateLimited(packet.Type) && !p.rateLimiter.Allow() {
			continue
		}

		if p.room == nil {
			continue
		}
		p.room.Send(p.ctx, ClientPacketEnvelope{clientPacket: packet, from: p})
	}
}

func (p *player) WritePump(socket WebsocketConnection) {
	defer socket.Close()

	for {
		select {
		case data := <-p.inbox:
			if err := socket.Write(data); err != nil {
				p.requestRemoval()
				return
			}
		case <-p.pingChan:
			if err := socket.Ping(); err != nil {
				p.requestRemoval()
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}
