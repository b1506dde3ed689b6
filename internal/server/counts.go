package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	countdomain "github.com/smallbiznis/stocktake/internal/count/domain"
)

func (s *Server) GetRoomSession(c *gin.Context) {
	view, err := s.countSvc.Session(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// HydrateRoomSession discards the room's working ledger and reloads it from
// storage. Anything not committed yet is gone afterwards.
func (s *Server) HydrateRoomSession(c *gin.Context) {
	view, err := s.countSvc.Hydrate(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (s *Server) AdjustCount(c *gin.Context) {
	var req countdomain.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.ItemID) == "" {
		AbortWithError(c, newValidationError("item_id", "required", "item_id is required"))
		return
	}
	req.RoomID = c.Param("roomId")

	entry, err := s.countSvc.Adjust(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (s *Server) SetCountText(c *gin.Context) {
	var req countdomain.SetTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.ItemID) == "" {
		AbortWithError(c, newValidationError("item_id", "required", "item_id is required"))
		return
	}
	req.RoomID = c.Param("roomId")

	entry, err := s.countSvc.SetText(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// DiscardRoomSession drops the room's working ledger without persisting it.
// The next session read hydrates fresh from storage.
func (s *Server) DiscardRoomSession(c *gin.Context) {
	if err := s.countSvc.Discard(c.Request.Context(), c.Param("roomId")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CommitRoomCounts(c *gin.Context) {
	result, err := s.countSvc.Commit(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
