package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PublicPage serves a published page with its visible blocks and records a
// view event. Unpublished pages are indistinguishable from missing ones.
func (s *Server) PublicPage(c *gin.Context) {
	detail, err := s.contentsvc.GetPageBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.analyticssvc.TrackPageView(c.Request.Context(), detail.Page.ID.String(), map[string]any{
		"slug":       detail.Page.Slug,
		"user_agent": c.Request.UserAgent(),
	}); err != nil {
		// A failed view write never blocks rendering.
		s.log.Warn("page view not recorded", zap.String("slug", detail.Page.Slug), zap.Error(err))
	}

	c.JSON(http.StatusOK, detail)
}
