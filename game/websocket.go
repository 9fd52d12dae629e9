package game

import (
	"time"

	"github.com/gorilla/websocket"
)

type gorillaWebSocketWrapper struct {
	socket *websocket.Conn
}

func NewGorillaWebSocketWrapper(conn *websocket.Conn) *gorillaWebSocketWrapper {
	conn.SetReadDeadline(time.Now().Add(time.Minute))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(time.Minute))
		return nil
	})
	return &gorillaWebSocketWrapper{socket: conn}
}

func (wc *gorillaWebSocketWrapper) Write(data []byte) error {
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *gorillaWebSocketWrapper) Ping() error {
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *gorillaWebSocketWrapper) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *gorillaWebSocketWrapper) Close() {
	wc.socket.SetWriteDeadline(time.Now().Add(time.Second * 20))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	wc.socket.Close()
}
