package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	dbaudit "github.com/mrlokans/locallibrary/internal/database/audit"
	"github.com/mrlokans/locallibrary/internal/entities"
)

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{events: events}
}

// filter builds the event filter from ?type=, ?entity_type= and ?entity_id=.
func (ac *AuditController) filter(c *gin.Context) dbaudit.EventFilter {
	return dbaudit.EventFilter{
		EventType:  entities.AuditEventType(c.Query("type")),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
	}
}

// AuditLogPage renders the audit log UI
// GET /audit
func (ac *AuditController) AuditLogPage(c *gin.Context) {
	page := pageParam(c)
	limit := 25
	offset := (page - 1) * limit

	filter := ac.filter(c)
	events, total, err := ac.events.GetEvents(c.Request.Context(), filter, limit, offset)
	if err != nil {
		renderServiceError(c, err, "audit log")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	render(c, http.StatusOK, "audit.html", gin.H{
		"Title":       "Audit Log",
		"Events":      events,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"TotalEvents": total,
		"EventType":   string(filter.EventType),
		"EventTypes":  getEventTypes(),
	})
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page := pageParam(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	if limit < 1 || limit > 100 {
		limit = 25
	}
	offset := (page - 1) * limit

	events, total, err := ac.events.GetEvents(c.Request.Context(), ac.filter(c), limit, offset)
	if err != nil {
		respondInternalError(c, err, "audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_pages":  totalPages,
		"total_events": total,
	})
}

type EventTypeOption struct {
	Value string
	Label string
}

func getEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventLoan), Label: "Loans"},
		{Value: string(entities.AuditEventStatus), Label: "Status changes"},
		{Value: string(entities.AuditEventCatalog), Label: "Catalog edits"},
		{Value: string(entities.AuditEventOverdue), Label: "Overdue"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
	}
}
