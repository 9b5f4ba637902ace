package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/config"
	"github.com/mrlokans/locallibrary/internal/entities"
)

// AuthTemplateData holds authentication info for templates.
type AuthTemplateData struct {
	Enabled   bool          // Whether auth is enabled (AuthModeLocal)
	LoggedIn  bool          // Whether a user acts on this request
	Username  string        // Current user's username (empty if not logged in)
	Desk      bool          // Acting as the built-in local librarian
	IsStaff   bool          // Whether the user may manage loans
	CSRFField template.HTML // Hidden CSRF input for forms (empty when CSRF is off)
}

// AuthContextMiddleware injects authentication data into Gin context for templates.
// Templates can access auth data via .Auth in the template data.
func AuthContextMiddleware(authMode config.AuthMode) gin.HandlerFunc {
	authEnabled := authMode == config.AuthModeLocal

	return func(c *gin.Context) {
		authData := AuthTemplateData{
			Enabled:   authEnabled,
			CSRFField: auth.CSRFTokenField(c),
		}

		if auth.IsAuthenticated(c) {
			authData.LoggedIn = true
			authData.Username = auth.GetUsername(c)
			authData.Desk = auth.GetAuthType(c) == auth.AuthTypeNone
			authData.IsStaff = auth.CurrentUser(c).HasPermission(entities.PermissionCanMarkReturned)
		}

		c.Set("auth_template_data", authData)
		c.Next()
	}
}

// GetAuthTemplateData retrieves auth data from context for use in templates.
func GetAuthTemplateData(c *gin.Context) AuthTemplateData {
	if data, exists := c.Get("auth_template_data"); exists {
		if authData, ok := data.(AuthTemplateData); ok {
			return authData
		}
	}
	return AuthTemplateData{}
}
