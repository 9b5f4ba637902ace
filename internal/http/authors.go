package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// AuthorForm is the author edit form as submitted and re-rendered.
type AuthorForm struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	DateOfDeath string
	Errors      map[string]string
}

func authorFormFrom(author *entities.Author) AuthorForm {
	form := AuthorForm{FirstName: author.FirstName, LastName: author.LastName}
	if author.DateOfBirth != nil {
		form.DateOfBirth = author.DateOfBirth.String()
	}
	if author.DateOfDeath != nil {
		form.DateOfDeath = author.DateOfDeath.String()
	}
	return form
}

// bind copies the posted fields into author. Unparsable dates are reported
// together with the author's own constraint violations.
func (f *AuthorForm) bind(c *gin.Context, author *entities.Author) error {
	f.FirstName = strings.TrimSpace(c.PostForm("first_name"))
	f.LastName = strings.TrimSpace(c.PostForm("last_name"))
	f.DateOfBirth = strings.TrimSpace(c.PostForm("date_of_birth"))
	f.DateOfDeath = strings.TrimSpace(c.PostForm("date_of_death"))

	verr := entities.NewValidationError()
	author.FirstName = f.FirstName
	author.LastName = f.LastName
	author.DateOfBirth = parseOptionalDate(verr, "date_of_birth", f.DateOfBirth)
	author.DateOfDeath = parseOptionalDate(verr, "date_of_death", f.DateOfDeath)

	if err := author.Validate(); err != nil {
		if fieldErrs, ok := entities.AsValidationError(err); ok {
			for field, msg := range fieldErrs.Fields {
				verr.Add(field, msg)
			}
		}
	}
	return verr.OrNil()
}

func parseOptionalDate(verr *entities.ValidationError, field, raw string) *entities.Date {
	if raw == "" {
		return nil
	}
	d, err := entities.ParseDate(raw)
	if err != nil {
		verr.Add(field, "Enter a valid date.")
		return nil
	}
	return &d
}

// AuthorsController serves the staff author create, update and delete forms.
type AuthorsController struct {
	authors AuthorWriter
	auditor AuthorAuditor
}

// NewAuthorsController creates the controller. auditor may be nil.
func NewAuthorsController(authors AuthorWriter, auditor AuthorAuditor) *AuthorsController {
	return &AuthorsController{authors: authors, auditor: auditor}
}

func (ac *AuthorsController) audit(ctx context.Context, c *gin.Context, action string, author *entities.Author) {
	if ac.auditor != nil {
		ac.auditor.LogAuthorChange(ctx, auth.GetUserID(c), action, author)
	}
}

// CreatePage handles GET /catalog/author/create.
func (ac *AuthorsController) CreatePage(c *gin.Context) {
	ac.renderForm(c, http.StatusOK, "Create Author", "/catalog/author/create", AuthorForm{})
}

// Create handles POST /catalog/author/create.
func (ac *AuthorsController) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var form AuthorForm
	author := &entities.Author{}

	err := form.bind(c, author)
	if err == nil {
		err = ac.authors.Create(ctx, author)
	}
	if err != nil {
		ac.formError(c, err, "Create Author", "/catalog/author/create", form)
		return
	}

	ac.audit(ctx, c, "create", author)
	ac.respondSaved(c, http.StatusCreated, author)
}

// UpdatePage handles GET /catalog/author/:id/update.
func (ac *AuthorsController) UpdatePage(c *gin.Context) {
	author, ok := ac.load(c)
	if !ok {
		return
	}
	ac.renderForm(c, http.StatusOK, "Update Author", updatePath(author.ID), authorFormFrom(author))
}

// Update handles POST /catalog/author/:id/update.
func (ac *AuthorsController) Update(c *gin.Context) {
	author, ok := ac.load(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var form AuthorForm
	err := form.bind(c, author)
	if err == nil {
		err = ac.authors.Update(ctx, author)
	}
	if err != nil {
		ac.formError(c, err, "Update Author", updatePath(author.ID), form)
		return
	}

	ac.audit(ctx, c, "update", author)
	ac.respondSaved(c, http.StatusOK, author)
}

// DeletePage handles GET /catalog/author/:id/delete with a confirmation.
func (ac *AuthorsController) DeletePage(c *gin.Context) {
	author, ok := ac.load(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "author_confirm_delete.html", gin.H{
		"Title":  "Delete Author",
		"author": author,
	})
}

// Delete handles POST /catalog/author/:id/delete. The author's books stay in
// the catalog without an author.
func (ac *AuthorsController) Delete(c *gin.Context) {
	author, ok := ac.load(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := ac.authors.Delete(ctx, author.ID); err != nil {
		ac.respondError(c, err, "delete author")
		return
	}
	ac.audit(ctx, c, "delete", author)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, SuccessResponse{Message: "author deleted"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/catalog/authors")
}

func (ac *AuthorsController) load(c *gin.Context) (*entities.Author, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		ac.respondError(c, entities.ErrNotFound, "load author")
		return nil, false
	}
	author, err := ac.authors.GetByID(c.Request.Context(), id)
	if err != nil {
		ac.respondError(c, err, "load author")
		return nil, false
	}
	return author, true
}

func (ac *AuthorsController) formError(c *gin.Context, err error, title, action string, form AuthorForm) {
	verr, ok := entities.AsValidationError(err)
	if !ok {
		ac.respondError(c, err, strings.ToLower(title))
		return
	}
	if wantsJSON(c) {
		respondServiceError(c, err, strings.ToLower(title))
		return
	}
	form.Errors = verr.Fields
	ac.renderForm(c, http.StatusBadRequest, title, action, form)
}

func (ac *AuthorsController) renderForm(c *gin.Context, status int, title, action string, form AuthorForm) {
	render(c, status, "author_form.html", gin.H{
		"Title":  title,
		"Action": action,
		"form":   form,
	})
}

func (ac *AuthorsController) respondSaved(c *gin.Context, status int, author *entities.Author) {
	if wantsJSON(c) {
		c.JSON(status, author)
		return
	}
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/catalog/author/%d", author.ID))
}

func (ac *AuthorsController) respondError(c *gin.Context, err error, context string) {
	if wantsJSON(c) {
		respondServiceError(c, err, context)
		return
	}
	renderServiceError(c, err, context)
}

func updatePath(id uint) string {
	return fmt.Sprintf("/catalog/author/%d/update", id)
}
