package repository

import (
	"context"

	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
)

type AssignmentRepository interface {
	CreateMany(ctx context.Context, assignments []entity.Assignment) error
	GetList(ctx context.Context, partyID string) ([]entity.Assignment, error)
	GetByGiverID(ctx context.Context, partyID, giverID string) (*entity.Assignment, error)
	DeleteByPartyID(ctx context.Context, partyID string) error
}

type assignmentRepository struct{}

func NewAssignmentRepository() AssignmentRepository {
	return &assignmentRepository{}
}

func (r *assignmentRepository) CreateMany(ctx context.Context, assignments []entity.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(&assignments).Error
}

func (r *assignmentRepository) GetList(ctx context.Context, partyID string) ([]entity.Assignment, error) {
	var result []entity.Assignment
	err := xcontext.DB(ctx).
		Where("party_id=?", partyID).
		Order("giver_id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *assignmentRepository) GetByGiverID(
	ctx context.Context, partyID, giverID string,
) (*entity.Assignment, error) {
	var result entity.Assignment
	err := xcontext.DB(ctx).Where("party_id=? AND giver_id=?", partyID, giverID).Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *assignmentRepository) DeleteByPartyID(ctx context.Context, partyID string) error {
	return xcontext.DB(ctx).Delete(&entity.Assignment{}, "party_id=?", partyID).Error
}
