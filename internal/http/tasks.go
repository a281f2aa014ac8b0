package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookworm/internal/scheduler"
	"github.com/mrlokans/bookworm/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	client    *tasks.Client
	scheduler *scheduler.ExportScheduler
}

// NewTasksController creates a new TasksController. scheduler may be nil.
func NewTasksController(client *tasks.Client, scheduler *scheduler.ExportScheduler) *TasksController {
	return &TasksController{client: client, scheduler: scheduler}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// RetentionDays overrides the retention for cleanup_activity
	RetentionDays int `json:"retention_days,omitempty" form:"retention_days"`
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        tasks.QueueExportJournal,
			Description: "Export every book as markdown into the export directory",
			Queue:       tasks.QueueExportJournal,
		},
		{
			Type:        tasks.QueueCleanupActivity,
			Description: "Remove activity log entries past their retention",
			Queue:       tasks.QueueCleanupActivity,
		},
	}

	resp := gin.H{"task_types": types}
	if tc.scheduler != nil {
		if next := tc.scheduler.GetNextRunTime(); next != nil {
			resp["next_export"] = next.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}

// RunTask handles POST /api/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	var task backlite.Task
	switch taskType {
	case tasks.QueueExportJournal:
		task = tasks.ExportJournalTask{Trigger: "manual"}
	case tasks.QueueCleanupActivity:
		task = tasks.CleanupActivityTask{RetentionDays: req.RetentionDays}
	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	id, err := tc.client.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	respondAccepted(c, "task enqueued", gin.H{"task_id": id, "type": taskType})
}

// RunExport handles POST /api/export/run
// Works without the task queue: the scheduler then exports inline.
func RunExport(s *scheduler.ExportScheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.RunNow(c.Request.Context()); err != nil {
			respondInternalError(c, err, "run export")
			return
		}
		respondAccepted(c, "export started", nil)
	}
}
