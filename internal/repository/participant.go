package repository

import (
	"context"

	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"gorm.io/gorm"
)

type ParticipantRepository interface {
	Create(ctx context.Context, e *entity.Participant) error
	GetByID(ctx context.Context, partyID, id string) (*entity.Participant, error)
	GetByEmail(ctx context.Context, partyID, email string) (*entity.Participant, error)
	GetList(ctx context.Context, partyID string) ([]entity.Participant, error)
	Count(ctx context.Context, partyID string) (int64, error)
	UpdateByID(ctx context.Context, partyID, id string, data map[string]any) error
	DeleteByID(ctx context.Context, partyID, id string) error
	DeleteByPartyID(ctx context.Context, partyID string) error
}

type participantRepository struct{}

func NewParticipantRepository() ParticipantRepository {
	return &participantRepository{}
}

func (r *participantRepository) Create(ctx context.Context, e *entity.Participant) error {
	return xcontext.DB(ctx).Create(e).Error
}

func (r *participantRepository) GetByID(ctx context.Context, partyID, id string) (*entity.Participant, error) {
	var result entity.Participant
	err := xcontext.DB(ctx).Where("party_id=? AND id=?", partyID, id).Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *participantRepository) GetByEmail(ctx context.Context, partyID, email string) (*entity.Participant, error) {
	var result entity.Participant
	err := xcontext.DB(ctx).Where("party_id=? AND email=?", partyID, email).Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetList returns the roster in join order.
func (r *participantRepository) GetList(ctx context.Context, partyID string) ([]entity.Participant, error) {
	var result []entity.Participant
	err := xcontext.DB(ctx).
		Where("party_id=?", partyID).
		Order("created_at ASC, id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *participantRepository) Count(ctx context.Context, partyID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Participant{}).
		Where("party_id=?", partyID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *participantRepository) UpdateByID(
	ctx context.Context, partyID, id string, data map[string]any,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Participant{}).
		Where("party_id=? AND id=?", partyID, id).
		Updates(data)
	if err := tx.Error; err != nil {
		return err
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *participantRepository) DeleteByID(ctx context.Context, partyID, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.Participant{}, "party_id=? AND id=?", partyID, id)
	if err := tx.Error; err != nil {
		return err
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *participantRepository) DeleteByPartyID(ctx context.Context, partyID string) error {
	return xcontext.DB(ctx).Delete(&entity.Participant{}, "party_id=?", partyID).Error
}
