package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	admindomain "github.com/smallbiznis/linkpage/internal/admin/domain"
	billingdomain "github.com/smallbiznis/linkpage/internal/billing/domain"
)

func (s *Server) AdminStats(c *gin.Context) {
	stats, err := s.adminsvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) AdminListUsers(c *gin.Context) {
	offset, limit := queryPagination(c)
	users, total, err := s.adminsvc.ListUsers(c.Request.Context(), offset, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
	})
}

func (s *Server) AdminUpdateUserPlan(c *gin.Context) {
	var req admindomain.UpdateUserPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.AdminUserID = currentUserID(c)
	req.UserID = c.Param("userId")

	user, err := s.adminsvc.UpdateUserPlan(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) AdminDeleteUser(c *gin.Context) {
	if err := s.adminsvc.DeleteUser(c.Request.Context(), currentUserID(c), c.Param("userId")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) AdminImpersonateUser(c *gin.Context) {
	resp, err := s.adminsvc.ImpersonateUser(c.Request.Context(), currentUserID(c), c.Param("userId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) AdminUpdatePackage(c *gin.Context) {
	var req billingdomain.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.PackageID = c.Param("packageId")

	pkg, err := s.adminsvc.UpdatePackage(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (s *Server) AdminListAuditLogs(c *gin.Context) {
	offset, limit := queryPagination(c)
	entries, total, err := s.auditsvc.List(c.Request.Context(), offset, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"audit_logs": entries,
		"total":      total,
	})
}

func queryPagination(c *gin.Context) (int, int) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}
	return offset, limit
}
