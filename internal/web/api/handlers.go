package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bookcatalogue/catalogue/internal/web/client"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogClient is the slice of the remote catalogue client the handlers
// depend on.
type CatalogClient interface {
	List(ctx context.Context) ([]client.BookResponse, error)
	Get(ctx context.Context, isbn string) (*client.BookResponse, error)
	Create(ctx context.Context, req client.BookCreateRequest) (*client.BookResponse, error)
	Update(ctx context.Context, isbn string, patch client.BookPatch) (*client.BookResponse, error)
	Delete(ctx context.Context, isbn string) error
}

// Handler serves the user-facing book views.
type Handler struct {
	client CatalogClient
	log    *zap.Logger
}

// NewHandler creates a web handler backed by the given catalogue client.
func NewHandler(c CatalogClient, log *zap.Logger) *Handler {
	return &Handler{client: c, log: log}
}

// NewRouter builds the gin engine for the web service.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	books := r.Group("/books")
	books.GET("", h.ListBooks)
	books.GET("/new", h.NewBookForm)
	books.POST("", h.CreateBook)
	books.GET("/:isbn/edit", h.EditBookForm)
	books.POST("/:isbn", h.UpdateBook)
	books.POST("/:isbn/delete", h.DeleteBook)

	return r
}

// ListBooks renders the catalogue listing with display-formatted dates.
func (h *Handler) ListBooks(c *gin.Context) {
	h.log.Debug("Listing all books")

	books, err := h.client.List(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	formattedDates := make(map[string]string, len(books))
	for _, b := range books {
		formattedDates[b.ISBN] = toDisplayDate(b.PublishDate)
	}

	c.JSON(http.StatusOK, gin.H{
		"books":           books,
		"formatted_dates": formattedDates,
	})
}

// NewBookForm renders an empty creation form.
func (h *Handler) NewBookForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"book_form":  BookForm{},
		"book_types": BookTypes,
	})
}

// CreateBook validates the submitted form and creates the book remotely.
func (h *Handler) CreateBook(c *gin.Context) {
	var form BookForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if fields := form.Validate(); fields != nil {
		h.renderFormErrors(c, form, fields)
		return
	}

	created, err := h.client.Create(c.Request.Context(), toCreateRequest(&form))
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.log.Info("Book created", zap.String("isbn", created.ISBN))
	c.JSON(http.StatusCreated, gin.H{
		"success":  fmt.Sprintf("Book created successfully with ISBN: %s", created.ISBN),
		"redirect": "/books",
	})
}

// EditBookForm renders the edit form pre-filled from the remote record.
func (h *Handler) EditBookForm(c *gin.Context) {
	isbn := c.Param("isbn")
	h.log.Debug("Showing edit form", zap.String("isbn", isbn))

	book, err := h.client.Get(c.Request.Context(), isbn)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"book_form":  toForm(book),
		"book_types": BookTypes,
	})
}

// UpdateBook validates the submitted form and patches the book remotely.
func (h *Handler) UpdateBook(c *gin.Context) {
	isbn := c.Param("isbn")

	var form BookForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if fields := form.Validate(); fields != nil {
		h.renderFormErrors(c, form, fields)
		return
	}

	if _, err := h.client.Update(c.Request.Context(), isbn, toPatch(&form)); err != nil {
		h.renderError(c, err)
		return
	}

	h.log.Info("Book updated", zap.String("isbn", isbn))
	c.JSON(http.StatusOK, gin.H{
		"success":  "Book updated successfully",
		"redirect": "/books",
	})
}

// DeleteBook removes the book remotely.
func (h *Handler) DeleteBook(c *gin.Context) {
	isbn := c.Param("isbn")

	if err := h.client.Delete(c.Request.Context(), isbn); err != nil {
		h.renderError(c, err)
		return
	}

	h.log.Info("Book deleted", zap.String("isbn", isbn))
	c.JSON(http.StatusOK, gin.H{
		"success":  "Book deleted successfully",
		"redirect": "/books",
	})
}

// renderFormErrors redisplays the originating input with field errors.
func (h *Handler) renderFormErrors(c *gin.Context, form BookForm, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"book_form":    form,
		"book_types":   BookTypes,
		"field_errors": fields,
	})
}

// renderError translates a failure and renders the resulting view state.
func (h *Handler) renderError(c *gin.Context, err error) {
	state := Translate(err)

	if state.Recoverable {
		h.log.Warn("Recoverable failure", zap.String("message", state.Message))
		c.JSON(state.Status, gin.H{
			"error":       state.Message,
			"recoverable": true,
			"redirect":    "/books",
		})
		return
	}

	if state.ErrorType == "404" {
		h.log.Warn("Not found", zap.String("message", state.Message))
	} else {
		h.log.Error("Request failed",
			zap.String("error_type", state.ErrorType),
			zap.String("message", state.Message),
		)
	}
	c.JSON(state.Status, gin.H{
		"error_type": state.ErrorType,
		"message":    state.Message,
	})
}
