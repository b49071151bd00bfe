// Package http wires the gin router: the websocket endpoint, the transcript
// REST API, and the plain-HTTP roster fallback for clients that cannot hold
// a persistent connection.
package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lexbridge/meetsync/internal/config"
	"github.com/lexbridge/meetsync/internal/core"
	"github.com/lexbridge/meetsync/internal/domain"
	"github.com/lexbridge/meetsync/internal/gateway"
	"github.com/lexbridge/meetsync/internal/transcripts"
)

// ClientTokenMiddleware tags each browser session with a stable uuid cookie.
// The token only feeds connection logs; nothing authorizes against it.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, gw *gateway.Gateway, rosters core.RosterRegistry, th *transcripts.Handler) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("MeetSyncSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	th.Register(api)

	// Polling fallback: same answer as a getParticipants point query, minus
	// the subscription.
	api.GET("/meetings/:id/participants", func(c *gin.Context) {
		meetingID := domain.MeetingID(c.Param("id"))
		c.JSON(http.StatusOK, rosters.Roster(meetingID))
	})

	r.GET("/ws/meetings", gw.HandleSocket)

	return r
}
