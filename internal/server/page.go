package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	contentdomain "github.com/smallbiznis/linkpage/internal/content/domain"
)

func (s *Server) CreatePage(c *gin.Context) {
	var req contentdomain.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.OwnerID = currentUserID(c)

	page, err := s.contentsvc.CreatePage(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, page)
}

func (s *Server) ListPages(c *gin.Context) {
	pages, err := s.contentsvc.ListPages(c.Request.Context(), currentUserID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

func (s *Server) GetPage(c *gin.Context) {
	detail, err := s.contentsvc.GetPage(c.Request.Context(), currentUserID(c), c.Param("pageId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) UpdatePage(c *gin.Context) {
	var req contentdomain.UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ActorID = currentUserID(c)
	req.PageID = c.Param("pageId")

	page, err := s.contentsvc.UpdatePage(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) DeletePage(c *gin.Context) {
	if err := s.contentsvc.DeletePage(c.Request.Context(), currentUserID(c), c.Param("pageId")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
