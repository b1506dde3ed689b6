package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/stocktake/internal/observability/context"
	"github.com/smallbiznis/stocktake/internal/orgcontext"
)

// HeaderOrg carries the already-authorized organization scope. Upstream auth
// owns identity; this workflow only consumes the resolved org.
const HeaderOrg = "X-Org-ID"

func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw == "" && s.cfg.DefaultOrgID != 0 {
			raw = snowflake.ID(s.cfg.DefaultOrgID).String()
		}
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		orgID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID.Int64())
		ctx = obscontext.WithOrgID(ctx, orgID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
