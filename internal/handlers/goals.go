package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goaltrack/api/internal/ids"
	"goaltrack/api/internal/middleware"
	"goaltrack/api/internal/models"
	"goaltrack/api/internal/repository"
	"goaltrack/api/internal/service"
)

type goalResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toGoalResponse(goal models.Goal) goalResponse {
	return goalResponse{
		ID:        goal.ID,
		UserID:    goal.UserID,
		Text:      goal.Text,
		CreatedAt: goal.CreatedAt,
		UpdatedAt: goal.UpdatedAt,
	}
}

func (h HandlerSet) ListGoals(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.respondError(c, service.ErrNotAuthorized)
		return
	}

	goals, err := h.goals.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]goalResponse, 0, len(goals))
	for _, goal := range goals {
		resp = append(resp, toGoalResponse(goal))
	}
	c.JSON(http.StatusOK, resp)
}

type goalRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h HandlerSet) CreateGoal(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.respondError(c, service.ErrNotAuthorized)
		return
	}

	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	goal := models.Goal{
		ID:     ids.New(),
		UserID: user.ID,
		Text:   req.Text,
	}
	if err := h.goals.Create(c.Request.Context(), goal); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toGoalResponse(goal))
}

// ownedGoal loads the goal and enforces that it belongs to the caller.
func (h HandlerSet) ownedGoal(c *gin.Context) (models.Goal, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.respondError(c, service.ErrNotAuthorized)
		return models.Goal{}, false
	}

	goal, err := h.goals.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return models.Goal{}, false
		}
		h.respondError(c, err)
		return models.Goal{}, false
	}

	if goal.UserID != user.ID {
		h.respondError(c, service.ErrNotAuthorized)
		return models.Goal{}, false
	}
	return goal, true
}

func (h HandlerSet) UpdateGoal(c *gin.Context) {
	goal, ok := h.ownedGoal(c)
	if !ok {
		return
	}

	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.goals.UpdateText(c.Request.Context(), goal.ID, req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toGoalResponse(updated))
}

func (h HandlerSet) DeleteGoal(c *gin.Context) {
	goal, ok := h.ownedGoal(c)
	if !ok {
		return
	}

	if err := h.goals.Delete(c.Request.Context(), goal.ID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "goal has been deleted"})
}
