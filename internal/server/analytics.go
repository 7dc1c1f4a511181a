package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/smallbiznis/linkpage/internal/analytics/domain"
)

// TrackEvent ingests a view/click/purchase event from a public page. It is
// unauthenticated: visitors are not logged in.
func (s *Server) TrackEvent(c *gin.Context) {
	var req analyticsdomain.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.UserAgent = c.Request.UserAgent()
	req.IPAddress = c.ClientIP()

	if err := s.analyticssvc.TrackEvent(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (s *Server) AnalyticsSummary(c *gin.Context) {
	summary, err := s.analyticssvc.UserSummary(c.Request.Context(), currentUserID(c), queryDays(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) PageAnalytics(c *gin.Context) {
	summary, err := s.analyticssvc.PageSummary(c.Request.Context(), currentUserID(c), c.Param("pageId"), queryDays(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func queryDays(c *gin.Context) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", "0"))
	if err != nil || days < 0 {
		return 0
	}
	return days
}
