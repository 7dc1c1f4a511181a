package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	contentdomain "github.com/smallbiznis/linkpage/internal/content/domain"
)

func (s *Server) CreateBlock(c *gin.Context) {
	var req contentdomain.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ActorID = currentUserID(c)
	req.PageID = c.Param("pageId")

	block, err := s.contentsvc.CreateBlock(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (s *Server) UpdateBlock(c *gin.Context) {
	var req contentdomain.UpdateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ActorID = currentUserID(c)
	req.BlockID = c.Param("blockId")

	block, err := s.contentsvc.UpdateBlock(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, block)
}

func (s *Server) DeleteBlock(c *gin.Context) {
	if err := s.contentsvc.DeleteBlock(c.Request.Context(), currentUserID(c), c.Param("blockId")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ReorderBlocks(c *gin.Context) {
	var req contentdomain.ReorderBlocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ActorID = currentUserID(c)
	req.PageID = c.Param("pageId")

	if err := s.contentsvc.ReorderBlocks(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
