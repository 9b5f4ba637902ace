package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/catalog"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// LoansController serves borrowed-copy listings and the staff loan actions.
type LoansController struct {
	queries   CatalogReader
	lifecycle LoanManager
	renewals  Renewer
}

func NewLoansController(queries CatalogReader, lifecycle LoanManager, renewals Renewer) *LoansController {
	return &LoansController{
		queries:   queries,
		lifecycle: lifecycle,
		renewals:  renewals,
	}
}

// MyBooks handles GET /catalog/mybooks: the current user's loans, soonest
// due first, one page at a time.
func (lc *LoansController) MyBooks(c *gin.Context) {
	user := auth.CurrentUser(c)
	page, err := lc.queries.PageBorrowedByUser(c.Request.Context(), user.ID, pageParam(c), lc.queries.PageSize())
	if err != nil {
		renderServiceError(c, err, "my borrowed books")
		return
	}

	render(c, http.StatusOK, "mybooks.html", gin.H{
		"Title":             "Borrowed books",
		"bookinstance_list": page.Items,
		"page_obj":          page,
		"is_paginated":      page.IsPaginated(),
	})
}

// AllBorrowed handles GET /catalog/borrowed: every copy on loan.
func (lc *LoansController) AllBorrowed(c *gin.Context) {
	loans, err := lc.queries.ListAllBorrowed(c.Request.Context())
	if err != nil {
		renderServiceError(c, err, "all borrowed books")
		return
	}

	render(c, http.StatusOK, "borrowed.html", gin.H{
		"Title":             "All borrowed books",
		"bookinstance_list": loans,
		"Statuses":          lc.lifecycle.Statuses(),
	})
}

// RenewPage handles GET /catalog/instance/:id/renew with the proposed date.
func (lc *LoansController) RenewPage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		renderServiceError(c, entities.ErrNotFound, "renew page")
		return
	}

	renewal, err := lc.renewals.Prepare(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		renderServiceError(c, err, "renew page")
		return
	}
	lc.renderRenewal(c, http.StatusOK, renewal)
}

// Renew handles POST /catalog/instance/:id/renew. A valid date redirects to
// the all-borrowed list; an invalid one re-renders the form with its error.
func (lc *LoansController) Renew(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		renderServiceError(c, entities.ErrNotFound, "renew")
		return
	}

	raw := c.PostForm(catalog.RenewalDateField)
	renewal, err := lc.renewals.Submit(c.Request.Context(), auth.CurrentUser(c), id, raw)
	if err != nil {
		if wantsJSON(c) {
			respondServiceError(c, err, "renew")
			return
		}
		renderServiceError(c, err, "renew")
		return
	}

	if wantsJSON(c) {
		status := http.StatusOK
		if !renewal.Renewed {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"renewed":  renewal.Renewed,
			"form":     renewal.Form,
			"instance": renewal.Instance,
		})
		return
	}

	if renewal.Renewed {
		c.Redirect(http.StatusFound, renewal.RedirectTo)
		return
	}
	lc.renderRenewal(c, http.StatusOK, renewal)
}

func (lc *LoansController) renderRenewal(c *gin.Context, status int, renewal *catalog.Renewal) {
	render(c, status, "book_renew.html", gin.H{
		"Title":         "Renew",
		"book_instance": renewal.Instance,
		"form":          renewal.Form,
		"FieldName":     catalog.RenewalDateField,
	})
}

// Return handles POST /catalog/instance/:id/return.
func (lc *LoansController) Return(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		lc.respondActionError(c, entities.ErrNotFound, "return")
		return
	}

	instance, err := lc.lifecycle.MarkReturned(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		lc.respondActionError(c, err, "return")
		return
	}
	lc.respondAction(c, instance)
}

// SetStatus handles POST /catalog/instance/:id/status. The status may be
// given as its code or its label.
func (lc *LoansController) SetStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		lc.respondActionError(c, entities.ErrNotFound, "set status")
		return
	}

	status, err := entities.ParseLoanStatus(c.PostForm("status"))
	if err != nil {
		verr := entities.NewValidationError()
		verr.Add("status", err.Error())
		lc.respondActionError(c, verr, "set status")
		return
	}

	instance, err := lc.lifecycle.SetStatus(c.Request.Context(), auth.CurrentUser(c), id, status)
	if err != nil {
		lc.respondActionError(c, err, "set status")
		return
	}
	lc.respondAction(c, instance)
}

// Lend handles POST /catalog/instance/:id/lend. due_back is optional and
// defaults to the configured loan period.
func (lc *LoansController) Lend(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		lc.respondActionError(c, entities.ErrNotFound, "lend")
		return
	}

	verr := entities.NewValidationError()
	borrowerID, err := strconv.ParseUint(strings.TrimSpace(c.PostForm("borrower_id")), 10, 32)
	if err != nil || borrowerID == 0 {
		verr.Add("borrower_id", "Select a borrower.")
	}
	var due *entities.Date
	if raw := strings.TrimSpace(c.PostForm("due_back")); raw != "" {
		d, err := entities.ParseDate(raw)
		if err != nil {
			verr.Add("due_back", "Enter a valid date.")
		} else {
			due = &d
		}
	}
	if err := verr.OrNil(); err != nil {
		lc.respondActionError(c, err, "lend")
		return
	}

	instance, err := lc.lifecycle.Lend(c.Request.Context(), auth.CurrentUser(c), id, uint(borrowerID), due)
	if err != nil {
		lc.respondActionError(c, err, "lend")
		return
	}
	lc.respondAction(c, instance)
}

// respondAction answers a successful staff action: the copy as JSON, or a
// redirect to ?next= (default the all-borrowed list) for forms.
func (lc *LoansController) respondAction(c *gin.Context, instance *entities.BookInstance) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, instance)
		return
	}
	c.Redirect(http.StatusSeeOther, auth.SafeRedirectPath(c.PostForm("next"), catalog.AllBorrowedPath))
}

func (lc *LoansController) respondActionError(c *gin.Context, err error, context string) {
	if wantsJSON(c) {
		respondServiceError(c, err, context)
		return
	}
	renderServiceError(c, err, context)
}
