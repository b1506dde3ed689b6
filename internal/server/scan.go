package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stocktake/internal/barcode"
	itemdomain "github.com/smallbiznis/stocktake/internal/item/domain"
	"github.com/smallbiznis/stocktake/internal/orgcontext"
)

type scanRequest struct {
	Code string `json:"code"`
}

type scanResponse struct {
	Matched   bool                 `json:"matched"`
	Code      string               `json:"code"`
	Item      *itemdomain.Response `json:"item,omitempty"`
	Spotlight *barcode.Spotlight   `json:"spotlight,omitempty"`
}

// ScanBarcode resolves a scanned code against the org's catalog. A miss is a
// normal outcome: the response says so and nothing else changes.
func (s *Server) ScanBarcode(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		AbortWithError(c, newValidationError("code", "required", "code is required"))
		return
	}

	ctx := c.Request.Context()
	orgID, roomID, err := s.roomScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.itemSvc.List(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, ok := barcode.Resolve(code, items)
	if !ok {
		s.metrics.RecordBarcodeScan(ctx, orgID.String(), "no_match")
		c.JSON(http.StatusOK, scanResponse{Matched: false, Code: code})
		return
	}

	spot := s.spotlight.Set(orgID.Int64(), roomID.Int64(), item.ID, item.BrandName)
	s.metrics.RecordBarcodeScan(ctx, orgID.String(), "match")

	c.JSON(http.StatusOK, scanResponse{
		Matched:   true,
		Code:      code,
		Item:      item,
		Spotlight: &spot,
	})
}

func (s *Server) GetSpotlight(c *gin.Context) {
	orgID, roomID, err := s.roomScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	spot, ok := s.spotlight.Active(orgID.Int64(), roomID.Int64())
	if !ok {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": true, "spotlight": spot})
}

func (s *Server) ClearSpotlight(c *gin.Context) {
	orgID, roomID, err := s.roomScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.spotlight.Clear(orgID.Int64(), roomID.Int64())
	c.Status(http.StatusNoContent)
}

// roomScope resolves the request's org and room, confirming the room exists
// in the org before any spotlight state is touched.
func (s *Server) roomScope(c *gin.Context) (snowflake.ID, snowflake.ID, error) {
	ctx := c.Request.Context()
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return 0, 0, ErrUnauthorized
	}

	rawRoom := c.Param("roomId")
	roomID, err := snowflake.ParseString(rawRoom)
	if err != nil {
		return 0, 0, newValidationError("roomId", "invalid_id", "roomId is not a valid id")
	}

	if _, err := s.roomSvc.Get(ctx, rawRoom); err != nil {
		return 0, 0, err
	}

	return orgID, roomID, nil
}
