package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/catalog"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// CatalogController serves the public browsing pages.
type CatalogController struct {
	queries CatalogReader
}

func NewCatalogController(queries CatalogReader) *CatalogController {
	return &CatalogController{queries: queries}
}

// Index handles GET / with the catalog's headline counts.
func (cc *CatalogController) Index(c *gin.Context) {
	counts, err := cc.queries.Counts(c.Request.Context())
	if err != nil {
		renderServiceError(c, err, "index counts")
		return
	}

	render(c, http.StatusOK, "index.html", gin.H{
		"Title":                   "Local Library Home",
		"num_books":               counts.Books,
		"num_instances":           counts.Instances,
		"num_instances_available": counts.InstancesAvailable,
		"num_authors":             counts.Authors,
		"num_genres":              counts.Genres,
	})
}

// BookList handles GET /catalog/books. ?q= narrows the list to titles
// containing the term.
func (cc *CatalogController) BookList(c *gin.Context) {
	ctx := c.Request.Context()
	term := strings.TrimSpace(c.Query("q"))
	number := pageParam(c)

	var (
		page *catalog.Page[entities.Book]
		err  error
	)
	if term != "" {
		page, err = cc.queries.SearchBooks(ctx, term, number, cc.queries.PageSize())
	} else {
		page, err = cc.queries.ListBooks(ctx, number, cc.queries.PageSize())
	}
	if err != nil {
		renderServiceError(c, err, "book list")
		return
	}

	render(c, http.StatusOK, "book_list.html", gin.H{
		"Title":        "Book List",
		"book_list":    page.Items,
		"page_obj":     page,
		"is_paginated": page.IsPaginated(),
		"Query":        term,
	})
}

// BookDetail handles GET /catalog/book/:id.
func (cc *CatalogController) BookDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		renderServiceError(c, entities.ErrNotFound, "book detail")
		return
	}

	book, err := cc.queries.GetBook(c.Request.Context(), id)
	if err != nil {
		renderServiceError(c, err, "book detail")
		return
	}

	render(c, http.StatusOK, "book_detail.html", gin.H{
		"Title": book.Title,
		"book":  book,
	})
}

// AuthorList handles GET /catalog/authors.
func (cc *CatalogController) AuthorList(c *gin.Context) {
	page, err := cc.queries.ListAuthors(c.Request.Context(), pageParam(c), cc.queries.PageSize())
	if err != nil {
		renderServiceError(c, err, "author list")
		return
	}

	render(c, http.StatusOK, "author_list.html", gin.H{
		"Title":        "Author List",
		"author_list":  page.Items,
		"page_obj":     page,
		"is_paginated": page.IsPaginated(),
	})
}

// AuthorDetail handles GET /catalog/author/:id.
func (cc *CatalogController) AuthorDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		renderServiceError(c, entities.ErrNotFound, "author detail")
		return
	}

	author, err := cc.queries.GetAuthor(c.Request.Context(), id)
	if err != nil {
		renderServiceError(c, err, "author detail")
		return
	}

	render(c, http.StatusOK, "author_detail.html", gin.H{
		"Title":  author.String(),
		"author": author,
	})
}
