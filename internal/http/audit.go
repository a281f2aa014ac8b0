package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/audit"
	"github.com/mrlokans/bookworm/internal/entities"
	"github.com/mrlokans/bookworm/internal/web"
)

const activityPageSize = 25

type AuditController struct {
	auditService *audit.Service
	sessions     *web.SessionManager
}

func NewAuditController(auditService *audit.Service, sessions *web.SessionManager) *AuditController {
	return &AuditController{
		auditService: auditService,
		sessions:     sessions,
	}
}

type EventTypeOption struct {
	Value string
	Label string
}

func getEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventCreate), Label: "Added"},
		{Value: string(entities.AuditEventDelete), Label: "Deleted"},
		{Value: string(entities.AuditEventExport), Label: "Export"},
	}
}

func (ac *AuditController) load(eventType string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	if eventType != "" {
		return ac.auditService.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	}
	return ac.auditService.GetEvents(limit, offset)
}

func totalPages(total int64, limit int) int {
	pages := (int(total) + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ActivityPage renders the journal activity log
// GET /activity
func (ac *AuditController) ActivityPage(c *gin.Context) {
	page, limit := parsePage(c, activityPageSize, activityPageSize)
	eventType := c.Query("type")

	events, total, err := ac.load(eventType, limit, (page-1)*limit)
	data := gin.H{
		"Title":     "Activity",
		"CSRFField": web.CSRFTokenField(c),
		"ReadOnly":  web.IsReadOnly(c),
	}
	if ac.sessions != nil {
		data["Flash"] = ac.sessions.PopFlash(c.Request.Context())
	}

	if err != nil {
		log.Printf("Failed to load activity: %v", err)
		data["Error"] = "Failed to load activity"
		c.HTML(http.StatusInternalServerError, "error", data)
		return
	}

	data["Events"] = events
	data["CurrentPage"] = page
	data["TotalPages"] = totalPages(total, limit)
	data["TotalEvents"] = total
	data["EventType"] = eventType
	data["EventTypes"] = getEventTypes()
	c.HTML(http.StatusOK, "activity", data)
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, limit := parsePage(c, activityPageSize, 100)
	eventType := c.Query("type")

	events, total, err := ac.load(eventType, limit, (page-1)*limit)
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     (page - 1) * limit,
		HasMore:    int64(page*limit) < total,
		TotalPages: totalPages(total, limit),
	})
}
