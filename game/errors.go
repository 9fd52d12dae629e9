package game

import "errors"

var (
	ErrRoomNotFound   = errors.New("room-not-found")
	ErrRoomFull       = errors.New("room-full")
	ErrGameInProgress = errors.New("game-already-started")
	ErrMemberNotFound = errors.New("member-not-found")
	ErrPlayerReleased = errors.New("player-released")
	ErrSendBacklog    = errors.New("player-send-backlog-full")
)
