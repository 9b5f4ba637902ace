package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/locallibrary/internal/auth"
	"github.com/mrlokans/locallibrary/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue         TaskQueue
	retentionDays int
	schedule      SweepSchedule
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue, retentionDays int) *TasksController {
	return &TasksController{queue: queue, retentionDays: retentionDays}
}

// WithSchedule attaches the overdue sweep timer for the schedule endpoint.
func (tc *TasksController) WithSchedule(schedule SweepSchedule) *TasksController {
	tc.schedule = schedule
	return tc
}

// Schedule handles GET /api/tasks/schedule
func (tc *TasksController) Schedule(c *gin.Context) {
	resp := gin.H{"running": false, "next_run": nil}
	if tc.schedule != nil && tc.schedule.IsRunning() {
		resp["running"] = true
		if next := tc.schedule.GetNextRunTime(); next != nil {
			resp["next_run"] = next.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// TaskTypeInfo describes a task type staff can start.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	defs := tasks.Definitions()
	types := make([]TaskTypeInfo, 0, len(defs))
	for _, def := range defs {
		types = append(types, TaskTypeInfo{
			Type:        def.Type,
			Description: def.Description,
			Queue:       def.New(tasks.RunOptions{}).Config().Name,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTask handles POST /api/tasks/:type/run. Cleanup runs use the
// configured audit retention.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	def, ok := tasks.Lookup(taskType)
	if !ok {
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	trigger := "manual"
	if username := auth.GetUsername(c); username != "" {
		trigger += ":" + username
	}
	task := def.New(tasks.RunOptions{
		Trigger:       trigger,
		RetentionDays: tc.retentionDays,
	})
	ids, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": ids[0],
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
