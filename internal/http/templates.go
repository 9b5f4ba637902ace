package http

import (
	"embed"
	"html/template"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/entities"
)

//go:embed templates/*.html
var builtinTemplates embed.FS

// LoadTemplates parses the page templates from dir, or the built-in set when
// dir is empty or does not exist.
func LoadTemplates(dir string, funcs template.FuncMap) (*template.Template, error) {
	tmpl := template.New("").Funcs(funcs)
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return tmpl.ParseGlob(filepath.Join(dir, "*.html"))
		}
	}
	return tmpl.ParseFS(builtinTemplates, "templates/*.html")
}

// templateFuncs are the helpers available to every page. Overdue is judged
// against the catalog clock so pages agree with the loan services.
func templateFuncs(today func() entities.Date) template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"subtract": func(a, b int) int {
			return a - b
		},
		"isOverdue": func(bi entities.BookInstance) bool {
			return bi.IsOverdue(today())
		},
		"dueDate": func(d *entities.Date) string {
			if d == nil {
				return ""
			}
			return d.String()
		},
	}
}

// render writes a page with the request's auth data under .Auth.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Auth"] = GetAuthTemplateData(c)
	c.HTML(status, name, data)
}
