package game

import (
	"fmt"
	"time"

	"github.com/himarcel99/hide-n-seek-render/logger"
)

// GameLoop is the room actor. Every roster or phase mutation happens inside
// this goroutine, so handlers below never need locks.
func (r *room) GameLoop() {
	logger.Infof("[Room %s] Game loop started", r.id)
	r.broadcastState()

	for {
		select {
		case <-r.ctx.Done():
			r.releasePlayers()
			logger.Infof("[Room %s] Game loop released", r.id)
			return
		case now := <-r.ticks:
			r.handleTick(now)
		case envelope := <-r.inbox:
			r.handlePacket(envelope)
		case jreq := <-r.joinReqs:
			r.handleJoinRequest(jreq)
		case p := <-r.removals:
			r.handleRemovePlayer(p)
		case <-r.pingPlayers:
			r.handlePingPlayers()
		}
	}
}

func (r *room) handlePacket(envelope ClientPacketEnvelope) {
	ps := r.stateOf(envelope.from)
	if ps == nil {
		// Packet from a connection we already removed, stale by definition.
		return
	}

	switch envelope.clientPacket.Type {
	case PACKET_UPDATE_SETTINGS:
		r.handleUpdateSettings(ps, envelope.clientPacket)
	case PACKET_START_HIDING:
		r.handleStartHiding(ps)
	case PACKET_CONFIRM_HIDDEN:
		r.handleConfirmHidden(ps)
	case PACKET_MARK_FOUND:
		r.handleMarkFound(ps)
	case PACKET_PLAY_AGAIN:
		r.handlePlayAgain(ps)
	case PACKET_LEAVE:
		r.handleRemovePlayer(envelope.from)
	default:
		r.sendError(ps, "unknown-packet-type")
	}
}

func (r *room) handlePingPlayers() {
	for _, ps := range r.players {
		if err := ps.player.Ping(); err != nil {
			logger.Debugf("[Room %s] Ping to player %d failed: %v", r.id, ps.number, err)
		}
	}
}

func (r *room) handleJoinRequest(jreq roomJoinRequest) {
	if r.phase != PHASE_WAITING {
		jreq.errChan <- ErrGameInProgress
		close(jreq.errChan)
		return
	}
	if len(r.players) >= MAX_PLAYERS {
		jreq.errChan <- ErrRoomFull
		close(jreq.errChan)
		return
	}

	ps := r.seat(jreq.player, ROLE_SEEKER)
	jreq.player.SetRoom(r)
	close(jreq.errChan)

	logger.Infof("[Room %s] Player %d joined, roster size %d", r.id, ps.number, len(r.players))
	r.broadcastState()
	r.parentLobby.RequestUpdateDescription(r.description())
}

func (r *room) handleRemovePlayer(p Player) {
	idx := -1
	for i, ps := range r.players {
		if ps.player == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Already removed; both pumps report the same departure.
		return
	}

	ps := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.sounds.Release(ps)
	r.removeFromRevealQueue(ps.player.Id())
	wasHider := ps.role == ROLE_HIDER
	wasActiveUnfound := ps.player.Id() == r.activeUnfoundId
	ps.player.CancelAndRelease()
	logger.Infof("[Room %s] Player %d left, roster size %d", r.id, ps.number, len(r.players))

	if len(r.players) == 0 {
		r.parentLobby.RemoveRoom(r.id)
		return
	}

	if wasHider {
		// players is number-ordered, so the first entry is the lowest number.
		promoted := r.players[0]
		promoted.role = ROLE_HIDER
		logger.Infof("[Room %s] Player %d promoted to hider", r.id, promoted.number)
	}

	switch r.phase {
	case PHASE_HIDING:
		if r.countdownValue < 0 && r.allReady() {
			r.armCountdown()
		}
	case PHASE_SEEKING:
		if r.allFound() {
			r.endGame(WINNER_SEEKERS)
		}
	case PHASE_GAME_OVER:
		if wasActiveUnfound {
			r.activateNextUnfound()
		}
	}

	r.broadcastState()
	r.parentLobby.RequestUpdateDescription(r.description())
}

func (r *room) handleUpdateSettings(ps *playerState, packet ClientPacket) {
	if ps.role != ROLE_HIDER {
		r.sendError(ps, "only the hider can change settings")
		return
	}
	if r.phase != PHASE_WAITING {
		r.sendError(ps, "settings can only change while waiting for players")
		return
	}
	if packet.SeekTimeLimit < MIN_SEEK_TIME_LIMIT || packet.SeekTimeLimit > MAX_SEEK_TIME_LIMIT {
		r.sendError(ps, fmt.Sprintf("seekTimeLimit must be between %d and %d seconds", MIN_SEEK_TIME_LIMIT, MAX_SEEK_TIME_LIMIT))
		return
	}
	if packet.SoundPlaysPerPlayer < MIN_SOUND_PLAYS || packet.SoundPlaysPerPlayer > MAX_SOUND_PLAYS {
		r.sendError(ps, fmt.Sprintf("soundPlaysPerPlayer must be between %d and %d", MIN_SOUND_PLAYS, MAX_SOUND_PLAYS))
		return
	}

	r.seekTimeLimit = packet.SeekTimeLimit
	r.soundPlaysPerPlayer = packet.SoundPlaysPerPlayer
	logger.Infof("[Room %s] Settings updated: seekTimeLimit=%ds soundPlaysPerPlayer=%d", r.id, r.seekTimeLimit, r.soundPlaysPerPlayer)
	r.broadcastState()
}

func (r *room) handleStartHiding(ps *playerState) {
	if ps.role != ROLE_HIDER {
		r.sendError(ps, "only the hider can start the game")
		return
	}
	if r.phase != PHASE_WAITING {
		r.sendError(ps, "the game has already started")
		return
	}
	if len(r.players) < 2 {
		r.sendError(ps, "at least two players are needed to start")
		return
	}

	for _, member := range r.players {
		member.isReady = false
		member.isFound = false
	}
	r.phase = PHASE_HIDING
	r.countdownValue = -1
	r.winner = WINNER_NONE
	logger.Infof("[Room %s] Hiding phase started with %d players", r.id, len(r.players))
	r.broadcastState()
	r.parentLobby.RequestUpdateDescription(r.description())
}

func (r *room) handleConfirmHidden(ps *playerState) {
	if r.phase != PHASE_HIDING {
		r.sendError(ps, "there is nothing to hide right now")
		return
	}
	if ps.isReady {
		return
	}

	ps.isReady = true
	r.broadcastState()

	if r.countdownValue < 0 && r.allReady() {
		r.armCountdown()
	}
}

func (r *room) armCountdown() {
	r.countdownValue = PRE_SEEK_COUNTDOWN
	logger.Infof("[Room %s] All players ready, countdown armed at %d", r.id, r.countdownValue)
}

func (r *room) handleMarkFound(ps *playerState) {
	switch {
	case r.phase == PHASE_SEEKING:
		if ps.isFound {
			return
		}
		ps.isFound = true
		logger.Infof("[Room %s] Player %d found during seeking", r.id, ps.number)
		r.broadcastState()
		if r.allFound() {
			r.endGame(WINNER_SEEKERS)
		}
	case r.phase == PHASE_GAME_OVER && r.winner == WINNER_HIDER:
		if ps.isFound {
			return
		}
		ps.isFound = true
		logger.Infof("[Room %s] Player %d found during reveal", r.id, ps.number)
		if ps.player.Id() == r.activeUnfoundId {
			r.activateNextUnfound()
			return
		}
		r.removeFromRevealQueue(ps.player.Id())
		r.broadcastState()
	default:
		r.sendError(ps, "there is nothing to find right now")
	}
}

func (r *room) handlePlayAgain(ps *playerState) {
	if r.phase != PHASE_GAME_OVER {
		r.sendError(ps, "the game is still running")
		return
	}

	r.phase = PHASE_WAITING
	r.winner = WINNER_NONE
	r.countdownValue = -1
	r.seekStart = time.Time{}
	r.nextSoundAt = time.Time{}
	r.rotationIndex = 0
	r.revealQueue = nil
	r.activeUnfoundId = ""
	for _, member := range r.players {
		member.isReady = false
		member.isFound = false
		member.soundsPlayed = 0
	}
	// Roles and numbers survive a rematch; sounds are redistributed fresh.
	r.sounds.Reset()
	for _, member := range r.players {
		r.sounds.Assign(member)
	}
	logger.Infof("[Room %s] Room reset for a rematch", r.id)
	r.broadcastState()
	r.parentLobby.RequestUpdateDescription(r.description())
}

func (r *room) handleTick(now time.Time) {
	switch r.phase {
	case PHASE_HIDING:
		if r.countdownValue < 0 {
			return
		}
		r.countdownValue--
		r.broadcast(MakePacketCountdown(r.countdownValue))
		if r.countdownValue <= 0 {
			r.transitionToSeeking(now)
		}
	case PHASE_SEEKING:
		elapsed := now.Sub(r.seekStart)
		if elapsed >= time.Duration(r.seekTimeLimit)*time.Second {
			r.endGame(WINNER_HIDER)
			return
		}
		if !now.Before(r.nextSoundAt) {
			r.rotateSounds(now)
		}
	}
}

func (r *room) transitionToSeeking(now time.Time) {
	r.phase = PHASE_SEEKING
	r.seekStart = now
	r.countdownValue = -1
	r.rotationIndex = 0
	r.nextSoundAt = now
	for _, member := range r.players {
		member.isReady = false
		member.soundsPlayed = 0
	}
	logger.Infof("[Room %s] Seeking phase started, time limit %ds", r.id, r.seekTimeLimit)
	r.broadcastState()
}

// endGame is idempotent: whichever of the deadline tick and the last
// mark-found lands first wins, the other becomes a no-op.
func (r *room) endGame(winner Winner) {
	if r.phase == PHASE_GAME_OVER {
		return
	}
	r.phase = PHASE_GAME_OVER
	r.winner = winner
	r.countdownValue = -1
	logger.Infof("[Room %s] Game over, winner: %s", r.id, winner)

	switch winner {
	case WINNER_SEEKERS:
		r.broadcast(MakePacketVictory())
		r.broadcastState()
	case WINNER_HIDER:
		r.buildRevealQueue()
		r.activateNextUnfound()
	}
}

func (r *room) allReady() bool {
	for _, ps := range r.players {
		if !ps.isReady {
			return false
		}
	}
	return true
}

func (r *room) allFound() bool {
	for _, ps := range r.players {
		if !ps.isFound {
			return false
		}
	}
	return true
}

func (r *room) broadcastState() {
	r.broadcast(MakePacketRoomState(r.snapshot()))
}

func (r *room) broadcast(data []byte) {
	if data == nil {
		return
	}
	for _, ps := range r.players {
		if err := ps.player.Send(data); err != nil {
			logger.Warningf("[Room %s] Dropping broadcast to player %d: %v", r.id, ps.number, err)
		}
	}
}

func (r *room) sendTo(ps *playerState, data []byte) {
	if data == nil {
		return
	}
	if err := ps.player.Send(data); err != nil {
		logger.Warningf("[Room %s] Dropping packet to player %d: %v", r.id, ps.number, err)
	}
}

func (r *room) sendError(ps *playerState, message string) {
	r.sendTo(ps, MakePacketError(message))
}
