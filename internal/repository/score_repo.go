package repository

import (
	"context"
	"strings"

	"github.com/maya/screenrank/internal/domain"
	"gorm.io/gorm"
)

// ScoreRepository handles aggregated score reads for the query API.
type ScoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository creates a new ScoreRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ScoreRepository: repository instance bound to db.
func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// ScorePage is one page of aggregated scores with pagination metadata.
type ScorePage struct {
	Scores     []domain.ActorScore
	TotalCount int64
	Limit      int
	Offset     int
	Profession string
}

// ListByProfession retrieves scores for one profession ordered by
// (score desc, number_of_titles desc) with limit/offset pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - profession: actor or actress.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - *ScorePage: matching rows plus total count for the profession.
//   - error: non-nil if the query fails.
func (r *ScoreRepository) ListByProfession(ctx context.Context, profession string, limit, offset int) (*ScorePage, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.ActorScore{}).
		Where("profession = ?", profession).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var scores []domain.ActorScore
	if err := r.db.WithContext(ctx).
		Where("profession = ?", profession).
		Order("score DESC").
		Order("number_of_titles DESC").
		Limit(limit).
		Offset(offset).
		Find(&scores).Error; err != nil {
		return nil, err
	}

	return &ScorePage{
		Scores:     scores,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
		Profession: profession,
	}, nil
}

// SearchByName retrieves scores for one profession whose person name matches
// the search term (case-insensitive substring), same ordering and pagination
// as ListByProfession.
func (r *ScoreRepository) SearchByName(ctx context.Context, profession, search string, limit, offset int) (*ScorePage, error) {
	pattern := "%" + strings.ToLower(search) + "%"

	query := r.db.WithContext(ctx).Model(&domain.ActorScore{}).
		Where("profession = ?", profession).
		Where("LOWER(primary_name) LIKE ?", pattern)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var scores []domain.ActorScore
	if err := query.Session(&gorm.Session{}).
		Order("score DESC").
		Order("number_of_titles DESC").
		Limit(limit).
		Offset(offset).
		Find(&scores).Error; err != nil {
		return nil, err
	}

	return &ScorePage{
		Scores:     scores,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
		Profession: profession,
	}, nil
}

// Count counts all aggregated score rows.
func (r *ScoreRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ActorScore{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
