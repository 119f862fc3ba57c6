package api

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sitemap-tools/sitemap-pulse/internal/analyzer"
	"github.com/sitemap-tools/sitemap-pulse/internal/models"
	"github.com/sitemap-tools/sitemap-pulse/internal/storage"
)

// Handler serves the analysis API. The store may be nil when history is
// disabled; recording a target is always best-effort and never fails an
// analysis response.
type Handler struct {
	store        storage.Store
	analyzer     *analyzer.Analyzer
	historyLimit int
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type AnalyzeRequest struct {
	URL         string `json:"url" binding:"required"`
	IncludeURLs bool   `json:"include_urls"`
}

func NewHandler(store storage.Store, an *analyzer.Analyzer, historyLimit int) *Handler {
	if historyLimit < 1 {
		historyLimit = 10
	}
	return &Handler{store: store, analyzer: an, historyLimit: historyLimit}
}

// AnalyzeSitemap runs one analysis for the submitted sitemap URL. Fetch
// failures map to 502, unparsable payloads to 422 and invalid input to 400.
func (h *Handler) AnalyzeSitemap(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "A sitemap URL is required"})
		return
	}

	target, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "The sitemap URL must be an absolute http or https URL"})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), target.String(), req.IncludeURLs)
	if err != nil {
		var fetchErr *analyzer.FetchError
		if errors.As(err, &fetchErr) {
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: fetchErr.Error()})
			return
		}
		var parseErr *analyzer.ParseError
		if errors.As(err, &parseErr) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: parseErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Analysis failed"})
		return
	}

	h.recordTarget(c, result.SitemapURL)

	c.JSON(http.StatusOK, result)
}

// recordTarget remembers a successfully analyzed URL. Storage failures are
// logged and swallowed so they never fail the analysis response.
func (h *Handler) recordTarget(c *gin.Context, sitemapURL string) {
	if h.store == nil {
		return
	}

	if err := h.store.RecordUse(c.Request.Context(), models.NewTarget(sitemapURL)); err != nil {
		log.Printf("Failed to record analysis target %s: %v", sitemapURL, err)
	}
}

func (h *Handler) ListRecentTargets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.historyLimit)))
	if limit < 1 || limit > 100 {
		limit = h.historyLimit
	}

	if h.store == nil {
		c.JSON(http.StatusOK, []*models.Target{})
		return
	}

	targets, err := h.store.ListTargets(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch recent targets"})
		return
	}

	if targets == nil {
		targets = []*models.Target{}
	}

	c.JSON(http.StatusOK, targets)
}

func (h *Handler) DeleteTarget(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid target ID"})
		return
	}

	if h.store == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Analysis history is disabled"})
		return
	}

	if err := h.store.DeleteTarget(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete target"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
