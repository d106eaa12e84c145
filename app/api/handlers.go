package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/trifecta/app/aggregator"
	"github.com/lysyi3m/trifecta/app/feed"
	"github.com/lysyi3m/trifecta/app/topics"
	"github.com/samber/lo"
)

func NewHandler(agg AggregatorInterface, configCache *topics.ConfigCache, homeTopics []string, webDir, version string) *Handler {
	return &Handler{
		aggregator:  agg,
		configCache: configCache,
		generator:   feed.NewGenerator(),
		homeTopics:  homeTopics,
		webDir:      webDir,
		version:     version,
	}
}

func (h *Handler) GetHome(c *gin.Context) {
	payload, err := h.aggregator.BuildHome(c.Request.Context(), h.configCache, h.homeTopics)
	if err != nil {
		h.buildFailed(c, "Failed to build home payload", err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

func (h *Handler) GetTopic(c *gin.Context) {
	def, ok := h.lookupTopic(c)
	if !ok {
		return
	}

	payload, err := h.aggregator.BuildPayload(c.Request.Context(), def)
	if err != nil {
		h.buildFailed(c, "Failed to build topic", err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

// GetPanelFeed re-publishes one ranked panel as an RSS, Atom or JSON feed.
func (h *Handler) GetPanelFeed(c *gin.Context) {
	viewpoint, err := topics.ParseViewpoint(c.Param("viewpoint"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Bad Request", Message: err.Error()})
		return
	}

	format, err := feed.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Bad Request", Message: err.Error()})
		return
	}

	def, ok := h.lookupTopic(c)
	if !ok {
		return
	}

	payload, err := h.aggregator.BuildPayload(c.Request.Context(), def)
	if err != nil {
		h.buildFailed(c, "Failed to build topic", err)
		return
	}

	topic := payload.Topics[0]
	panel := topic.Panel(viewpoint)
	if panel == nil {
		h.buildFailed(c, "Panel missing from topic", fmt.Errorf("%w: no %s panel", aggregator.ErrUnexpected, viewpoint))
		return
	}

	export := feed.Export{
		Title:       fmt.Sprintf("Trifecta: %s (%s)", topic.Title, viewpoint),
		Link:        requestURL(c),
		Description: fmt.Sprintf("Latest %s headlines on %s", viewpoint, topic.Category),
		Updated:     topic.UpdatedAt,
		Items: lo.FilterMap(panel.Items, func(item aggregator.Item, _ int) (feed.ExportItem, bool) {
			if item.Placeholder {
				return feed.ExportItem{}, false
			}
			return feed.ExportItem{
				ID:          item.ID,
				Title:       item.Title,
				URL:         item.URL,
				SourceName:  item.Source.Name,
				PublishedAt: feed.ParseDate(item.PublishedAtISO),
			}, true
		}),
	}

	doc, err := h.generator.Run(export, format)
	if err != nil {
		h.buildFailed(c, "Feed generation failed", err)
		return
	}

	c.Header("X-Feed-Items", fmt.Sprint(len(export.Items)))
	c.Data(http.StatusOK, format.ContentType(), []byte(doc))
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"version":       h.version,
		"loaded_topics": h.configCache.GetConfigCount(),
		"home_topics":   h.homeTopics,
	})
}

func (h *Handler) NotFound(c *gin.Context) {
	if h.serveStatic(c) {
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not Found", Path: c.Request.URL.Path})
}

func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.Header("Allow", http.MethodGet)
	c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method Not Allowed"})
}

func (h *Handler) lookupTopic(c *gin.Context) (*topics.Definition, bool) {
	key := c.Param("key")

	def, err := h.configCache.GetConfig(key)
	if err != nil {
		slog.Warn("Topic configuration not found", "topic", key, "error", err)
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not Found", Message: fmt.Sprintf("unknown topic %q", key), Path: c.Request.URL.Path})
		return nil, false
	}
	return def, true
}

func (h *Handler) buildFailed(c *gin.Context, message string, err error) {
	kind := "unexpected"
	if errors.Is(err, aggregator.ErrConfiguration) {
		kind = "configuration"
	}

	slog.Error(message, "kind", kind, "path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message, Message: err.Error()})
}

// serveStatic serves the frontend for GET requests outside the API.
func (h *Handler) serveStatic(c *gin.Context) bool {
	if h.webDir == "" || c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}

	name := filepath.Clean("/" + c.Request.URL.Path)
	if name == "/" {
		name = "/index.html"
	}

	path := filepath.Join(h.webDir, filepath.FromSlash(name))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.File(path)
	return true
}

func requestURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	} else if proto := strings.ToLower(c.GetHeader("X-Forwarded-Proto")); proto == "http" || proto == "https" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)
}
