package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListRooms(c *gin.Context) {
	rooms, err := s.roomSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

func (s *Server) GetRoomByID(c *gin.Context) {
	room, err := s.roomSvc.Get(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}
