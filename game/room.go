package game

import (
	"context"
	"time"
)

type RoomPhase int

const (
	PHASE_WAITING RoomPhase = iota // Players may join, Hider tunes settings.
	PHASE_HIDING                   // Everyone hides their device and confirms.
	PHASE_SEEKING                  // Timed search with the sound rotation running.
	PHASE_GAME_OVER                // Winner decided; Hider win runs the reveal queue.
)

func (p RoomPhase) String() string {
	switch p {
	case PHASE_WAITING:
		return "waiting"
	case PHASE_HIDING:
		return "hiding"
	case PHASE_SEEKING:
		return "seeking"
	case PHASE_GAME_OVER:
		return "gameover"
	}
	return "unknown"
}

type Role int

const (
	ROLE_HIDER Role = iota
	ROLE_SEEKER
)

func (r Role) String() string {
	if r == ROLE_HIDER {
		return "hider"
	}
	return "seeker"
}

type Winner int

const (
	WINNER_NONE Winner = iota
	WINNER_HIDER
	WINNER_SEEKERS
)

func (w Winner) String() string {
	switch w {
	case WINNER_HIDER:
		return "hider"
	case WINNER_SEEKERS:
		return "seekers"
	}
	return ""
}

const (
	MAX_PLAYERS        = 16
	PRE_SEEK_COUNTDOWN = 10 // seconds, one lobby tick each

	MIN_SOUND_DELAY     = 2 * time.Second
	ROTATION_IDLE_RETRY = time.Second

	DEFAULT_SEEK_TIME_LIMIT = 300
	MIN_SEEK_TIME_LIMIT     = 30
	MAX_SEEK_TIME_LIMIT     = 1800

	DEFAULT_SOUND_PLAYS = 3
	MIN_SOUND_PLAYS     = 1
	MAX_SOUND_PLAYS     = 10
)

// playerState is the room's roster entry for one connection. It is mutated
// only inside the room's GameLoop goroutine.
type playerState struct {
	player          Player
	number          int
	role            Role
	isReady         bool
	isFound         bool
	soundsPlayed    int
	animalSoundURL  string
	unfoundSoundURL string
}

type room struct {
	id          string
	parentLobby Lobby

	phase               RoomPhase
	seekTimeLimit       int // seconds
	soundPlaysPerPlayer int
	winner              Winner

	// countdownValue < 0 means no pre-seek countdown is armed. The lobby's
	// 1 Hz tick decrements it once armed.
	countdownValue int
	seekStart      time.Time

	// Sound rotation deadline state, same idea as a nextTick timestamp:
	// the next 1 Hz tick at or past nextSoundAt runs one rotation step.
	nextSoundAt   time.Time
	rotationIndex int

	revealQueue     []string
	activeUnfoundId string

	// players stays sorted by number: numbers only grow and removals keep
	// relative order, so join order is iteration order.
	players    []*playerState
	nextNumber int

	sounds *SoundAssigner

	ctx       context.Context
	cancelCtx context.CancelFunc

	inbox       chan ClientPacketEnvelope
	ticks       chan time.Time
	joinReqs    chan roomJoinRequest
	removals    chan Player
	pingPlayers chan struct{}
}

// NewRoom seats host as Hider #1. The room does not run until the lobby
// assigns it a code and starts GameLoop.
func NewRoom(host Player, sounds *SoundAssigner) *room {
	ctx, cancel := context.WithCancel(context.Background())
	r := &room{
		phase:               PHASE_WAITING,
		seekTimeLimit:       DEFAULT_SEEK_TIME_LIMIT,
		soundPlaysPerPlayer: DEFAULT_SOUND_PLAYS,
		countdownValue:      -1,
		players:             make([]*playerState, 0, MAX_PLAYERS),
		nextNumber:          1,
		sounds:              sounds,
		ctx:                 ctx,
		cancelCtx:           cancel,
		inbox:               make(chan ClientPacketEnvelope, 1024),
		ticks:               make(chan time.Time, 4),
		joinReqs:            make(chan roomJoinRequest),
		removals:            make(chan Player, 64),
		pingPlayers:         make(chan struct{}, 1),
	}
	r.seat(host, ROLE_HIDER)
	return r
}

func (r *room) seat(p Player, role Role) *playerState {
	ps := &playerState{
		player: p,
		number: r.nextNumber,
		role:   role,
	}
	r.nextNumber++
	r.sounds.Assign(ps)
	r.players = append(r.players, ps)
	return ps
}

func (r *room) SetId(id string) {
	r.id = id
}

func (r *room) SetParentLobby(l Lobby) {
	r.parentLobby = l
}

func (r *room) Description() roomDescription {
	return r.description()
}

func (r *room) description() roomDescription {
	memberIds := make([]string, 0, len(r.players))
	for _, ps := range r.players {
		memberIds = append(memberIds, ps.player.Id())
	}
	return roomDescription{
		id:           r.id,
		playersCount: len(r.players),
		started:      r.phase != PHASE_WAITING,
		memberIds:    memberIds,
	}
}

// Tick never blocks so the lobby's fan-out cannot stall on one room.
func (r *room) Tick(now time.Time) {
	select {
	case r.ticks <- now:
	default:
	}
}

func (r *room) PingPlayers() {
	select {
	case r.pingPlayers <- struct{}{}:
	default:
	}
}

func (r *room) Send(ctx context.Context, envelope ClientPacketEnvelope) {
	select {
	case r.inbox <- envelope:
	case <-ctx.Done():
	case <-r.ctx.Done():
	}
}

func (r *room) RequestJoin(jreq roomJoinRequest) {
	select {
	case r.joinReqs <- jreq:
	case <-r.ctx.Done():
		jreq.errChan <- ErrRoomNotFound
		close(jreq.errChan)
	}
}

func (r *room) RemoveMe(ctx context.Context, p Player) {
	select {
	case r.removals <- p:
	case <-ctx.Done():
	case <-r.ctx.Done():
	}
}

// CloseAndRelease stops the GameLoop. It only cancels the room context; the
// loop releases the players and clears the roster on its own goroutine when
// it observes the cancellation, so the lobby never touches room state. Stale
// ticks or packets queued for a released room are dropped, never acted on.
func (r *room) CloseAndRelease() {
	r.cancelCtx()
}

func (r *room) releasePlayers() {
	for _, ps := range r.players {
		ps.player.CancelAndRelease()
	}
	r.players = r.players[:0]
}

func (r *room) stateOf(p Player) *playerState {
	for _, ps := range r.players {
		if ps.player == p {
			return ps
		}
	}
	return nil
}

func (r *room) stateById(id string) *playerState {
	for _, ps := range r.players {
		if ps.player.Id() == id {
			return ps
		}
	}
	return nil
}

func (r *room) snapshot() RoomSnapshot {
	snapshot := RoomSnapshot{
		RoomCode:              r.id,
		Phase:                 r.phase.String(),
		SeekTimeLimit:         r.seekTimeLimit,
		SoundPlaysPerPlayer:   r.soundPlaysPerPlayer,
		Winner:                r.winner.String(),
		ActiveUnfoundPlayerId: r.activeUnfoundId,
		Players:               make([]PlayerSnapshot, 0, len(r.players)),
	}
	if !r.seekStart.IsZero() {
		snapshot.SeekStartTime = r.seekStart.UnixMilli()
	}
	for _, ps := range r.players {
		snapshot.Players = append(snapshot.Players, PlayerSnapshot{
			Id:              ps.player.Id(),
			Number:          ps.number,
			Role:            ps.role.String(),
			IsReady:         ps.isReady,
			IsFound:         ps.isFound,
			SoundsPlayed:    ps.soundsPlayed,
			AnimalSoundURL:  ps.animalSoundURL,
			UnfoundSoundURL: ps.unfoundSoundURL,
		})
	}
	return snapshot
}
