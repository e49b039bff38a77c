// Package server exposes a Chat over HTTP with gin and streams chat events to
// websocket clients.
package server

import (
	"log"
	"net/http"
	"os"

	_ "github.com/Desarso/companion/docs"
	"github.com/Desarso/companion/models"
	"github.com/Desarso/companion/sessions"
	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
)

type Server struct {
	chat   *sessions.Chat
	hub    *sessions.Hub
	logger *log.Logger
}

func New(chat *sessions.Chat, hub *sessions.Hub) *Server {
	return &Server{
		chat:   chat,
		hub:    hub,
		logger: log.New(os.Stdout, "[HTTP] ", log.LstdFlags),
	}
}

// Router builds a gin engine with every route mounted under /api/v1.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	s.Register(router.Group("/api/v1"))
	router.GET("/swagger/doc.json", s.swaggerDoc)
	return router
}

func (s *Server) Register(r *gin.RouterGroup) {
	r.GET("/config", s.getConfig)
	r.PUT("/config", s.putConfig)

	r.GET("/thread", s.getThread)
	r.POST("/turns", s.postTurn)
	r.POST("/regenerate", s.postRegenerate)

	r.POST("/messages/:id/edit", s.editMessage)
	r.POST("/messages/:id/switch", s.switchBranch)
	r.GET("/messages/:id/siblings", s.siblings)
	r.GET("/messages/:id/image", s.messageImage)
	r.GET("/messages/:id/audio", s.messageAudio)

	r.POST("/chats/new", s.newChat)
	r.GET("/sessions", s.listSessions)
	r.POST("/sessions/:id/load", s.loadSession)
	r.DELETE("/sessions/:id", s.deleteSession)
	r.DELETE("/sessions", s.clearSessions)

	r.POST("/calls/start", s.startCall)
	r.POST("/calls/end", s.endCall)
	r.GET("/calls", s.listCalls)
	r.DELETE("/calls/:id", s.deleteCall)
	r.DELETE("/calls", s.clearCalls)

	r.POST("/reset", s.reset)
	r.GET("/ws", s.websocket)
}

func (s *Server) swaggerDoc(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}

// websocket registers the connection with the hub. The first frame is a
// thread_replaced event so the client fetches the thread.
func (s *Server) websocket(c *gin.Context) {
	s.hub.ServeWS(c.Writer, c.Request, models.Event{
		Type:      models.EventThreadReplaced,
		State:     string(s.chat.State()),
		MessageID: s.chat.Thread().ActiveID(),
	})
}
