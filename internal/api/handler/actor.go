package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maya/screenrank/internal/domain"
	"github.com/maya/screenrank/internal/repository"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// ActorHandler handles aggregated score endpoints.
type ActorHandler struct {
	scores *repository.ScoreRepository
}

// NewActorHandler creates a new actor handler.
// Parameters:
//   - scores: score repository instance.
// Returns:
//   - *ActorHandler: initialized handler.
func NewActorHandler(scores *repository.ScoreRepository) *ActorHandler {
	return &ActorHandler{scores: scores}
}

// ActorResponse is one aggregated score row in API shape.
type ActorResponse struct {
	Name                string  `json:"name"`
	Score               float64 `json:"score"`
	NumberOfTitles      int     `json:"number_of_titles"`
	TotalRuntimeMinutes int     `json:"total_runtime_minutes"`
}

// PaginationMeta carries paging information alongside a result list.
type PaginationMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ActorsListResponse is the paginated actors payload.
type ActorsListResponse struct {
	Actors     []ActorResponse `json:"actors"`
	Profession string          `json:"profession"`
	Pagination PaginationMeta  `json:"pagination"`
}

// ListActors handles GET /api/v1/actors.
// Query parameters: profession (required, actor|actress), limit, offset,
// search (optional case-insensitive name match).
func (h *ActorHandler) ListActors(c *gin.Context) {
	profession := c.Query("profession")
	if !domain.ValidCategory(profession) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid profession. Must be one of: actor, actress",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid limit: must be between 1 and 1000",
		})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid offset: must be non-negative",
		})
		return
	}

	var page *repository.ScorePage
	if search := c.Query("search"); search != "" {
		page, err = h.scores.SearchByName(c.Request.Context(), profession, search, limit, offset)
	} else {
		page, err = h.scores.ListByProfession(c.Request.Context(), profession, limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list actors: " + err.Error(),
		})
		return
	}

	actors := make([]ActorResponse, 0, len(page.Scores))
	for _, s := range page.Scores {
		actors = append(actors, ActorResponse{
			Name:                s.PrimaryName,
			Score:               s.Score,
			NumberOfTitles:      s.NumberOfTitles,
			TotalRuntimeMinutes: s.TotalRuntimeMinutes,
		})
	}

	c.JSON(http.StatusOK, ActorsListResponse{
		Actors:     actors,
		Profession: page.Profession,
		Pagination: PaginationMeta{
			Total:  page.TotalCount,
			Limit:  page.Limit,
			Offset: page.Offset,
		},
	})
}
