package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idilsaglam/issuetracker/internal/editor"
	"github.com/idilsaglam/issuetracker/internal/feedback"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/printing"
	"github.com/idilsaglam/issuetracker/internal/recommend"
)

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", s.metricsHandler())
	r.GET(printing.Path, s.print)

	api := r.Group("/api")
	api.GET("/recommendedProductIssue", s.recommend)
	api.GET("/feedback", s.listFeedback)
	api.POST("/feedback", s.addFeedback)
	api.POST("/feedback/:id/resolve", s.resolveFeedback)
}

func (s *Server) recommend(c *gin.Context) {
	productID := c.Query("productId")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return
	}
	e, err := s.feedback.Latest(c.Request.Context(), productID)
	if err != nil {
		s.logger.Error("recommendation lookup failed", "product", productID, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recommendation unavailable"})
		return
	}
	var resp recommend.Response
	if e != nil {
		resp.ProductIssue = &editor.Suggestion{Title: e.Title, Description: e.Description}
	}
	c.JSON(http.StatusOK, resp)
}

type addFeedbackRequest struct {
	ProductID   string `json:"productId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) addFeedback(c *gin.Context) {
	var req addFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return
	}
	if v := model.Validate(req.Title, req.Description); !v.IsValid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback", "errors": v.Errors})
		return
	}
	e, err := s.feedback.Add(c.Request.Context(), feedback.Entry{
		ProductID:   req.ProductID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) listFeedback(c *gin.Context) {
	productID := c.Query("productId")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return
	}
	list, err := s.feedback.List(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []feedback.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (s *Server) resolveFeedback(c *gin.Context) {
	err := s.feedback.Resolve(c.Request.Context(), c.Param("id"))
	if errors.Is(err, feedback.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) print(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required"})
		return
	}
	kinds, err := printing.ParseKinds(c.Query("printType"))
	if err != nil || len(kinds) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "printType must list Invoice and/or Packing Slip"})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := printing.Render(c.Writer, orderID, kinds); err != nil {
		s.logger.Error("render print document", "order", orderID, "err", err)
	}
}
