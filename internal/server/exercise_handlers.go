package server

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ignite-gym/ignitegym/internal/models"
)

// CreateHistoryRequest registers a completed exercise
type CreateHistoryRequest struct {
	ExerciseID string `json:"exercise_id" binding:"required"`
}

// HistoryEntry is one completed exercise in a day section
type HistoryEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	Hour      string    `json:"hour"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryDay groups entries under a DD.MM.YYYY title
type HistoryDay struct {
	Title string         `json:"title"`
	Data  []HistoryEntry `json:"data"`
}

const msgExerciseNotFound = "Exercise not found."

// @Summary List muscle groups
// @Tags exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Router /groups [get]
func (s *Server) listGroups(c *gin.Context) {
	var groups []string
	if err := s.db.WithContext(c.Request.Context()).
		Model(&models.Exercise{}).
		Distinct("group_name").
		Order("group_name").
		Pluck("group_name", &groups).Error; err != nil {
		respondInternal(c, s.logger, err, "Failed to list groups")
		return
	}

	if groups == nil {
		groups = []string{}
	}
	c.JSON(http.StatusOK, groups)
}

// @Summary List exercises of a group
// @Tags exercises
// @Produce json
// @Security BearerAuth
// @Param group path string true "Muscle group"
// @Success 200 {array} models.Exercise
// @Router /exercises/bygroup/{group} [get]
func (s *Server) listExercisesByGroup(c *gin.Context) {
	exercises := []models.Exercise{}
	if err := s.db.WithContext(c.Request.Context()).
		Where("group_name = ?", c.Param("group")).
		Order("name").
		Find(&exercises).Error; err != nil {
		respondInternal(c, s.logger, err, "Failed to list exercises")
		return
	}

	c.JSON(http.StatusOK, exercises)
}

// @Summary Get an exercise
// @Tags exercises
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Success 200 {object} models.Exercise
// @Failure 404 {object} map[string]interface{}
// @Router /exercises/{id} [get]
func (s *Server) getExercise(c *gin.Context) {
	var exercise models.Exercise
	if err := models.FindByID(s.db.WithContext(c.Request.Context()), c.Param("id"), &exercise); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, msgExerciseNotFound)
			return
		}
		respondInternal(c, s.logger, err, "Failed to get exercise")
		return
	}

	c.JSON(http.StatusOK, exercise)
}

// @Summary Register a completed exercise
// @Tags history
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateHistoryRequest true "Exercise"
// @Success 201 {object} models.History
// @Failure 404 {object} map[string]interface{}
// @Router /history [post]
func (s *Server) createHistory(c *gin.Context) {
	var req CreateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	db := s.db.WithContext(c.Request.Context())

	var exercise models.Exercise
	if err := models.FindByID(db, req.ExerciseID, &exercise); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, msgExerciseNotFound)
			return
		}
		respondInternal(c, s.logger, err, "Failed to get exercise")
		return
	}

	sessionData, _ := GetSessionData(c)
	entry := &models.History{UserID: sessionData.UserID, ExerciseID: exercise.ID}
	if err := db.Create(entry).Error; err != nil {
		respondInternal(c, s.logger, err, "Failed to register history")
		return
	}

	var created models.History
	if err := models.FindByIDWithPreload(db, entry.ID, &created, "Exercise"); err != nil {
		respondInternal(c, s.logger, err, "Failed to load history")
		return
	}

	s.logger.Info().
		Str("user_id", sessionData.UserID).
		Str("exercise_id", exercise.ID).
		Msg("Exercise registered")

	c.JSON(http.StatusCreated, created)
}

// @Summary Workout history
// @Description Completed exercises grouped by day, most recent first
// @Tags history
// @Produce json
// @Security BearerAuth
// @Success 200 {array} HistoryDay
// @Router /history [get]
func (s *Server) listHistory(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var rows []models.History
	if err := s.db.WithContext(c.Request.Context()).
		Preload("Exercise").
		Where("user_id = ?", sessionData.UserID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		respondInternal(c, s.logger, err, "Failed to list history")
		return
	}

	c.JSON(http.StatusOK, groupHistory(rows, s.location))
}

// groupHistory buckets rows by local calendar day. Days are ordered newest
// first and entries keep the newest-first order within a day.
func groupHistory(rows []models.History, loc *time.Location) []HistoryDay {
	days := []HistoryDay{}
	index := map[string]int{}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	for _, row := range rows {
		local := row.CreatedAt.In(loc)
		title := local.Format("02.01.2006")

		i, ok := index[title]
		if !ok {
			i = len(days)
			index[title] = i
			days = append(days, HistoryDay{Title: title})
		}

		days[i].Data = append(days[i].Data, HistoryEntry{
			ID:        row.ID,
			Name:      row.Exercise.Name,
			Group:     row.Exercise.Group,
			Hour:      local.Format("15:04"),
			CreatedAt: row.CreatedAt,
		})
	}

	return days
}
