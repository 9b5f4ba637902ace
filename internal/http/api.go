package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/catalog"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// APIController serves the catalog as JSON.
type APIController struct {
	queries CatalogReader
}

func NewAPIController(queries CatalogReader) *APIController {
	return &APIController{queries: queries}
}

// Stats handles GET /api/catalog/stats
func (ac *APIController) Stats(c *gin.Context) {
	counts, err := ac.queries.Counts(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "catalog stats")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Books handles GET /api/catalog/books?page=&page_size=&q=
func (ac *APIController) Books(c *gin.Context) {
	ctx := c.Request.Context()
	size := pageSizeParam(c, ac.queries.PageSize())

	var (
		page *catalog.Page[entities.Book]
		err  error
	)
	if term := strings.TrimSpace(c.Query("q")); term != "" {
		page, err = ac.queries.SearchBooks(ctx, term, pageParam(c), size)
	} else {
		page, err = ac.queries.ListBooks(ctx, pageParam(c), size)
	}
	if err != nil {
		respondServiceError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, paginated(page))
}

// Book handles GET /api/catalog/books/:id
func (ac *APIController) Book(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "invalid id")
		return
	}
	book, err := ac.queries.GetBook(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Authors handles GET /api/catalog/authors?page=&page_size=
func (ac *APIController) Authors(c *gin.Context) {
	page, err := ac.queries.ListAuthors(c.Request.Context(), pageParam(c), pageSizeParam(c, ac.queries.PageSize()))
	if err != nil {
		respondServiceError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, paginated(page))
}

// Author handles GET /api/catalog/authors/:id
func (ac *APIController) Author(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "invalid id")
		return
	}
	author, err := ac.queries.GetAuthor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "get author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// Vocabulary handles GET /api/catalog/vocabulary: the genres and languages
// books can be tagged with.
func (ac *APIController) Vocabulary(c *gin.Context) {
	ctx := c.Request.Context()
	genres, err := ac.queries.Genres(ctx)
	if err != nil {
		respondInternalError(c, err, "list genres")
		return
	}
	languages, err := ac.queries.Languages(ctx)
	if err != nil {
		respondInternalError(c, err, "list languages")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"genres":    genres,
		"languages": languages,
	})
}

// MyLoans handles GET /api/catalog/mybooks: every loan of the current user,
// unpaginated.
func (ac *APIController) MyLoans(c *gin.Context) {
	loans, err := ac.queries.ListBorrowedByUser(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list my loans")
		return
	}
	if loans == nil {
		loans = []entities.BookInstance{}
	}
	c.JSON(http.StatusOK, gin.H{
		"loans": loans,
		"count": len(loans),
	})
}

// Overdue handles GET /api/catalog/overdue, staff only.
func (ac *APIController) Overdue(c *gin.Context) {
	loans, err := ac.queries.ListOverdue(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list overdue")
		return
	}
	if loans == nil {
		loans = []entities.BookInstance{}
	}
	c.JSON(http.StatusOK, gin.H{
		"today":   ac.queries.Today(),
		"overdue": loans,
		"count":   len(loans),
	})
}
