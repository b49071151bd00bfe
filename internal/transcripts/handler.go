package transcripts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lexbridge/meetsync/internal/domain"
)

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/transcripts", h.create)
	api.GET("/transcripts", h.list)
	api.GET("/transcripts/:id", h.get)
}

type createRequest struct {
	MeetingID    string          `json:"meetingId"`
	Content      string          `json:"content"`
	Participants json.RawMessage `json:"participants"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if req.MeetingID == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "meetingId and content are required"})
		return
	}

	draft := domain.TranscriptDraft{
		MeetingID:    req.MeetingID,
		Content:      req.Content,
		Participants: req.Participants,
	}
	t, err := h.store.Create(c.Request.Context(), draft)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	log.Info().Str("module", "transcripts").Str("transcript", t.ID).Str("meeting", t.MeetingID).Msg("transcript created")
	c.JSON(http.StatusOK, t)
}

func (h *Handler) list(c *gin.Context) {
	meetingID := c.Query("meetingId")

	var (
		out any
		err error
	)
	if meetingID != "" {
		out, err = h.store.ByMeeting(c.Request.Context(), meetingID)
	} else {
		out, err = h.store.All(c.Request.Context())
	}
	if err != nil {
		log.Error().Err(err).Str("module", "transcripts").Msg("list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	t, err := h.store.ByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Transcript not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "transcripts").Msg("get failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}
