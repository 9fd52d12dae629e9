package game

import (
	"encoding/json"

	"github.com/himarcel99/hide-n-seek-render/logger"
)

// Client -> server packet types.
const (
	PACKET_UPDATE_SETTINGS = "update_settings"
	PACKET_START_HIDING    = "start_hiding"
	PACKET_CONFIRM_HIDDEN  = "confirm_hidden"
	PACKET_MARK_FOUND      = "mark_found"
	PACKET_PLAY_AGAIN      = "play_again"
	PACKET_LEAVE           = "leave"
)

// Server -> client packet types.
const (
	PACKET_ROOM_STATE     = "room_state"
	PACKET_COUNTDOWN      = "countdown"
	PACKET_PLAY_SOUND     = "play_sound"
	PACKET_ACTIVE_UNFOUND = "active_unfound"
	PACKET_VICTORY        = "victory"
	PACKET_ERROR          = "error"
)

type ClientPacket struct {
	Type                string `json:"type"`
	SeekTimeLimit       int    `json:"seekTimeLimit,omitempty"`
	SoundPlaysPerPlayer int    `json:"soundPlaysPerPlayer,omitempty"`
}

type ClientPacketEnvelope struct {
	clientPacket ClientPacket
	from         Player
}

// PlayerSnapshot is the wire shape of one roster entry.
type PlayerSnapshot struct {
	Id              string `json:"id"`
	Number          int    `json:"number"`
	Role            string `json:"role"`
	IsReady         bool   `json:"isReady"`
	IsFound         bool   `json:"isFound"`
	SoundsPlayed    int    `json:"soundsPlayed"`
	AnimalSoundURL  string `json:"uniqueAnimalSoundURL"`
	UnfoundSoundURL string `json:"uniqueUnfoundSoundURL"`
}

// RoomSnapshot is broadcast to every member on each state-affecting operation.
type RoomSnapshot struct {
	RoomCode              string           `json:"roomCode"`
	Phase                 string           `json:"phase"`
	SeekTimeLimit         int              `json:"seekTimeLimit"`
	SoundPlaysPerPlayer   int              `json:"soundPlaysPerPlayer"`
	SeekStartTime         int64            `json:"seekStartTime"`
	Winner                string           `json:"winner"`
	ActiveUnfoundPlayerId string           `json:"activeUnfoundPlayerId"`
	Players               []PlayerSnapshot `json:"players"`
}

type RoomStatePacket struct {
	Type string       `json:"type"`
	Room RoomSnapshot `json:"room"`
}

type CountdownPacket struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type PlaySoundPacket struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type ActiveUnfoundPacket struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type VictoryPacket struct {
	Type string `json:"type"`
}

type ErrorPacket struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func marshalPacket(packetType string, packet any) []byte {
	data, err := json.Marshal(packet)
	if err != nil {
		logger.Criticalf("Failed to marshal %s packet: %v", packetType, err)
		return nil
	}
	return data
}

func MakePacketRoomState(snapshot RoomSnapshot) []byte {
	return marshalPacket(PACKET_ROOM_STATE, RoomStatePacket{Type: PACKET_ROOM_STATE, Room: snapshot})
}

func MakePacketCountdown(value int) []byte {
	return marshalPacket(PACKET_COUNTDOWN, CountdownPacket{Type: PACKET_COUNTDOWN, Value: value})
}

func MakePacketPlaySound(url string) []byte {
	return marshalPacket(PACKET_PLAY_SOUND, PlaySoundPacket{Type: PACKET_PLAY_SOUND, URL: url})
}

func MakePacketActiveUnfound(url string) []byte {
	return marshalPacket(PACKET_ACTIVE_UNFOUND, ActiveUnfoundPacket{Type: PACKET_ACTIVE_UNFOUND, URL: url})
}

func MakePacketVictory() []byte {
	return marshalPacket(PACKET_VICTORY, VictoryPacket{Type: PACKET_VICTORY})
}

func MakePacketError(message string) []byte {
	return marshalPacket(PACKET_ERROR, ErrorPacket{Type: PACKET_ERROR, Message: message})
}
