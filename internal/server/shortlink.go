package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/linkpage/internal/analytics/domain"
)

func (s *Server) CreateShortlink(c *gin.Context) {
	var req analyticsdomain.CreateShortlinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	link, err := s.analyticssvc.CreateShortlink(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// ResolveShortlink redirects to the target URL. Counting the click and
// appending the click event happen inside the service before the redirect.
func (s *Server) ResolveShortlink(c *gin.Context) {
	target, err := s.analyticssvc.ResolveShortlink(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}
