package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/utils"
)

type LiveController struct {
	Hub      *live.Hub
	Tables   *TableController
	upgrader websocket.Upgrader
}

func NewLiveController(hub *live.Hub, tables *TableController, allowedOrigin string) *LiveController {
	return &LiveController{
		Hub:    hub,
		Tables: tables,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// Events -> websocket stream of every change notification
func (lc *LiveController) Events(c *gin.Context) {
	ws, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade: %v", err)
		return
	}
	lc.Hub.RegisterClient(ws)

	// the client never sends anything; reading detects the disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	lc.Hub.UnregisterClient(ws)
}

// OpenTablesFeed -> websocket that receives the open tables screen now and
// again after every change that can affect it
func (lc *LiveController) OpenTablesFeed(c *gin.Context) {
	ws, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade: %v", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	events := []string{live.EventTablesChanged, live.EventItemsChanged, live.EventTick}
	first, updates, err := live.Watch(ctx, lc.Hub, events, lc.Tables.OpenSummaries)
	if err != nil {
		utils.ErrorLogger.Printf("open tables feed: %v", err)
		return
	}
	if err := ws.WriteJSON(first); err != nil {
		return
	}
	for summaries := range updates {
		if err := ws.WriteJSON(summaries); err != nil {
			return
		}
	}
}
