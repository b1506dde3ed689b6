package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stocktake/internal/count/liveevents"
	"github.com/smallbiznis/stocktake/internal/orgcontext"
)

const countEventHeartbeat = 15 * time.Second

// StreamCountEvents streams room recommit events for the org over SSE. New
// subscribers first receive the buffered backlog so dashboards catch up on
// commits they missed while disconnected.
func (s *Server) StreamCountEvents(c *gin.Context) {
	if s.hub == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	sub, backlog, err := s.hub.Subscribe(orgID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	c.Writer.WriteString("retry: 2000\n\n")
	flusher.Flush()

	for _, event := range backlog {
		if !writeCountEvent(c, event) {
			return
		}
	}
	flusher.Flush()

	heartbeat := time.NewTicker(countEventHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := c.Writer.WriteString(": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case event, open := <-sub.Events():
			if !open {
				return
			}
			if !writeCountEvent(c, event) {
				return
			}
			flusher.Flush()
		}
	}
}

func writeCountEvent(c *gin.Context, event liveevents.RoomRecommitted) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		return true
	}
	if _, err := c.Writer.WriteString("event: room_recommitted\n"); err != nil {
		return false
	}
	if _, err := c.Writer.WriteString("data: " + string(payload) + "\n\n"); err != nil {
		return false
	}
	return true
}
