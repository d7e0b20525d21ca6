package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bookcatalogue/catalogue/internal/management/catalog"
	"github.com/bookcatalogue/catalogue/internal/management/config"
	"github.com/bookcatalogue/catalogue/internal/management/db"
	"github.com/bookcatalogue/catalogue/internal/management/events"
	"github.com/bookcatalogue/catalogue/internal/management/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

// Handler serves the catalogue management API.
type Handler struct {
	service   catalog.Service
	publisher events.Publisher
	log       *zap.Logger
}

// NewHandler creates a management API handler.
func NewHandler(service catalog.Service, publisher events.Publisher, log *zap.Logger) *Handler {
	return &Handler{service: service, publisher: publisher, log: log}
}

// NewRouter builds the gin engine with routing, auth and metrics wired in.
func NewRouter(h *Handler, cfg *config.Config, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestMetrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	books := r.Group("/api/books", BasicAuth(cfg.Users, log))
	anyRole := RequireRole(config.RoleAdmin, config.RoleWorker)
	adminOnly := RequireRole(config.RoleAdmin)

	books.GET("", anyRole, h.GetByISBN)
	books.GET("/all", anyRole, h.GetAll)
	books.GET("/search", anyRole, h.Search)
	books.POST("", anyRole, h.Create)
	books.PATCH("/:isbn", adminOnly, h.Update)
	books.DELETE("/:isbn", adminOnly, h.Delete)

	return r
}

// GetAll returns every book in the catalogue.
func (h *Handler) GetAll(c *gin.Context) {
	books, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(books))
}

// GetByISBN returns a single book identified by the isbn query parameter.
func (h *Handler) GetByISBN(c *gin.Context) {
	book, err := h.service.GetByISBN(c.Request.Context(), c.Query("isbn"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(book))
}

// Search finds books by name or author. Name takes precedence; with
// neither parameter the whole catalogue is returned.
func (h *Handler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		books []*db.Book
		err   error
	)
	switch {
	case c.Query("name") != "":
		books, err = h.service.SearchByName(ctx, c.Query("name"))
	case c.Query("author") != "":
		books, err = h.service.SearchByAuthor(ctx, c.Query("author"))
	default:
		books, err = h.service.GetAll(ctx)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(books))
}

// Create adds a book to the catalogue, merging into an existing record
// when the natural key already exists.
func (h *Handler) Create(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	book, err := h.service.Create(c.Request.Context(), toCreateInput(&req))
	if err != nil {
		h.writeError(c, err)
		return
	}

	metrics.BooksCreated.Inc()
	h.publishAsync(func(ctx context.Context) error {
		return h.publisher.PublishBookCreated(ctx, book)
	})

	c.JSON(http.StatusCreated, toResponse(book))
}

// Update applies a sparse patch to the book with the given ISBN.
func (h *Handler) Update(c *gin.Context) {
	var req BookPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	book, err := h.service.Update(c.Request.Context(), c.Param("isbn"), toPatch(&req))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.publishAsync(func(ctx context.Context) error {
		return h.publisher.PublishBookUpdated(ctx, book)
	})

	c.JSON(http.StatusOK, toResponse(book))
}

// Delete removes the book with the given ISBN.
func (h *Handler) Delete(c *gin.Context) {
	isbn := c.Param("isbn")
	if err := h.service.Delete(c.Request.Context(), isbn); err != nil {
		h.writeError(c, err)
		return
	}

	h.publishAsync(func(ctx context.Context) error {
		return h.publisher.PublishBookDeleted(ctx, isbn)
	})

	c.Status(http.StatusNoContent)
}

// publishAsync fires an event without blocking or failing the request.
func (h *Handler) publishAsync(publish func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := publish(ctx); err != nil {
			h.log.Error("Failed to publish event", zap.Error(err))
		}
	}()
}

// writeError maps catalogue errors to HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var notFound *catalog.NotFoundError
	var badRequest *catalog.BadRequestError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound.Error()})
	case errors.As(err, &badRequest):
		c.JSON(http.StatusBadRequest, gin.H{"message": badRequest.Error()})
	case errors.Is(err, catalog.ErrISBNExhausted):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		h.log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

// requestMetrics counts requests by route and outcome class.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		op := c.FullPath()
		if op == "" {
			op = "unmatched"
		}
		outcome := "success"
		switch {
		case c.Writer.Status() >= 500:
			outcome = "server_error"
		case c.Writer.Status() >= 400:
			outcome = "client_error"
		}
		metrics.Requests.WithLabelValues(op, outcome).Inc()
	}
}
