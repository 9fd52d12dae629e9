package game

import "github.com/himarcel99/hide-n-seek-render/logger"

// The reveal sequence runs after a Hider win: each still-hidden device gets
// a turn emitting its unfound cue until it is found or the queue runs out.

func (r *room) buildRevealQueue() {
	r.revealQueue = r.revealQueue[:0]
	for _, ps := range r.players {
		if !ps.isFound {
			r.revealQueue = append(r.revealQueue, ps.player.Id())
		}
	}
	r.activeUnfoundId = ""
}

// activateNextUnfound pops the queue front into activeUnfoundId. Players
// without an assigned unfound cue are skipped silently, without an
// intermediate state broadcast for the skipped entry.
func (r *room) activateNextUnfound() {
	for len(r.revealQueue) > 0 {
		id := r.revealQueue[0]
		r.revealQueue = r.revealQueue[1:]

		ps := r.stateById(id)
		if ps == nil || ps.isFound {
			continue
		}
		if ps.unfoundSoundURL == "" {
			logger.Warningf("[Room %s] Player %d has no unfound sound assigned, skipping reveal turn", r.id, ps.number)
			continue
		}

		r.activeUnfoundId = id
		r.sendTo(ps, MakePacketActiveUnfound(ps.unfoundSoundURL))
		logger.Infof("[Room %s] Player %d is now the active unfound device", r.id, ps.number)
		r.broadcastState()
		return
	}

	r.activeUnfoundId = ""
	logger.Infof("[Room %s] Reveal sequence complete", r.id)
	r.broadcastState()
}

func (r *room) removeFromRevealQueue(id string) {
	for i, queued := range r.revealQueue {
		if queued == id {
			r.revealQueue = append(r.revealQueue[:i], r.revealQueue[i+1:]...)
			return
		}
	}
}
