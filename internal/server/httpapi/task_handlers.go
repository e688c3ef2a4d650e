package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
	"github.com/dmitrijs2005/tasksync/internal/server/services"
)

type createTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     string              `json:"dueDate"`
	Tags        []string            `json:"tags"`
}

type updateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
}

type listTasksQuery struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Search   string `form:"search"`
}

// parseDueDate accepts RFC 3339 timestamps and bare dates.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, common.NewValidationError("Invalid due date")
}

// mutationCtx keeps request values but ignores client disconnects, so a
// mutation that reached storage always runs to completion.
func mutationCtx(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func (s *HTTPServer) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		s.writeError(c, err)
		return
	}

	task, err := s.deps.Tasks.Create(mutationCtx(c), callerID(c), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     due,
		Tags:        req.Tags,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *HTTPServer) listTasks(c *gin.Context) {
	var q listTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.bindError(c, err)
		return
	}
	tasks, err := s.deps.Tasks.List(c.Request.Context(), callerID(c), models.TaskFilter(q))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *HTTPServer) getTask(c *gin.Context) {
	task, err := s.deps.Tasks.GetByID(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *HTTPServer) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	task, err := s.deps.Tasks.Update(mutationCtx(c), callerID(c), c.Param("id"), services.UpdateTaskInput(req))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": services.MsgTaskUpdated, "task": task})
}

func (s *HTTPServer) deleteTask(c *gin.Context) {
	if err := s.deps.Tasks.Delete(mutationCtx(c), callerID(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": services.MsgTaskDeleted})
}

func (s *HTTPServer) taskStats(c *gin.Context) {
	st, err := s.deps.Tasks.Stats(c.Request.Context(), callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *HTTPServer) upcomingTasks(c *gin.Context) {
	tasks, err := s.deps.Tasks.Upcoming(c.Request.Context(), callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if len(tasks) == 0 {
		c.JSON(http.StatusOK, gin.H{"tasks": []models.UpcomingTask{}, "message": services.MsgNoTasksDue})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
