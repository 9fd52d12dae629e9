package game

import (
	"time"

	"github.com/himarcel99/hide-n-seek-render/logger"
)

// rotateSounds runs one step of the seeking-phase sound rotation. It spreads
// each hidden player's remaining cue allotment evenly over the time budget
// and cycles through eligible players round-robin by number.
func (r *room) rotateSounds(now time.Time) {
	if r.phase != PHASE_SEEKING {
		return
	}

	timeRemaining := time.Duration(r.seekTimeLimit)*time.Second - now.Sub(r.seekStart)
	if timeRemaining <= 0 {
		// The deadline branch of handleTick ends the game; nothing to do.
		return
	}

	eligible := r.eligiblePlayers()
	if len(eligible) == 0 {
		r.nextSoundAt = now.Add(ROTATION_IDLE_RETRY)
		return
	}

	totalPlaysLeft := 0
	for _, ps := range eligible {
		totalPlaysLeft += r.soundPlaysPerPlayer - ps.soundsPlayed
	}
	delay := timeRemaining / time.Duration(totalPlaysLeft)
	if delay < MIN_SOUND_DELAY {
		delay = MIN_SOUND_DELAY
	}

	// The rotation index is taken modulo the eligible set, not the roster,
	// so found or maxed-out players are skipped without breaking fairness.
	for i := 0; i < len(eligible); i++ {
		ps := eligible[(r.rotationIndex+i)%len(eligible)]
		if ps.animalSoundURL == "" {
			logger.Warningf("[Room %s] Player %d has no animal sound assigned, skipping", r.id, ps.number)
			continue
		}
		r.sendTo(ps, MakePacketPlaySound(ps.animalSoundURL))
		ps.soundsPlayed++
		r.rotationIndex = r.rotationIndex + i + 1
		logger.Debugf("[Room %s] Sound cue %d/%d sent to player %d", r.id, ps.soundsPlayed, r.soundPlaysPerPlayer, ps.number)
		break
	}

	r.nextSoundAt = now.Add(delay)
}

// eligiblePlayers returns the not-yet-found players that still have cue
// allotment, in number order (the roster order invariant).
func (r *room) eligiblePlayers() []*playerState {
	eligible := make([]*playerState, 0, len(r.players))
	for _, ps := range r.players {
		if !ps.isFound && ps.soundsPlayed < r.soundPlaysPerPlayer {
			eligible = append(eligible, ps)
		}
	}
	return eligible
}
