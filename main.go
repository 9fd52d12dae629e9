package main

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/himarcel99/hide-n-seek-render/config"
	"github.com/himarcel99/hide-n-seek-render/game"
	"github.com/himarcel99/hide-n-seek-render/logger"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	cfg := config.Load()
	if cfg.Debug {
		logger.SetDebug()
	}

	r := CreateServer(cfg.AllowedOrigins)

	idGen := game.NewIdGen()
	tickerGen := game.NewTickerGen()

	lobby := game.NewLobby(&idGen, &tickerGen)

	lobbyStarted := make(chan struct{})
	go lobby.LobbyActor(lobbyStarted)
	<-lobbyStarted

	gameHandler := game.NewGameHandler(lobby)
	{
		gameGroup := r.Group("/game")
		gameGroup.GET("/create", gameHandler.CreateGameHandler)
		gameGroup.GET("/join/:roomid", gameHandler.JoinGameHandler)
		gameGroup.GET("/room-of/:playerid", gameHandler.RoomOfMemberHandler)
	}

	logger.Infof("api listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("Couldn't start server: %v", err)
	}
}
