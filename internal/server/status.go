package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getOrderStatus(c *gin.Context) {
	overview, err := s.statusSvc.Overview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (s *Server) exportOrderStatus(c *gin.Context) {
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := s.statusSvc.ExportCSV(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="order-status.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		reader, err := s.statusSvc.ExportPDF(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="order-status.pdf"`)
		c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, nil)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or pdf"})
	}
}

func (s *Server) triggerSync(c *gin.Context) {
	if err := s.scheduler.RunOnce(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sync completed"})
}
