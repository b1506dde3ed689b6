package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListItems(c *gin.Context) {
	items, err := s.itemSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetItemByID(c *gin.Context) {
	item, err := s.itemSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetItemStock reports the item's cross-room total as maintained by the
// store. A room's pending, uncommitted counts never show up here.
func (s *Server) GetItemStock(c *gin.Context) {
	itemID := c.Param("id")
	stock, err := s.itemSvc.AggregateStock(c.Request.Context(), itemID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item_id":       itemID,
		"stock_on_hand": stock,
	})
}
