package repository

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
	"gorm.io/gorm"
)

// ErrPartyNotOpen is returned by Lock when the conditional status update
// did not match an open party.
var ErrPartyNotOpen = errors.New("party is not open")

type PartyRepository interface {
	Create(ctx context.Context, e *entity.Party) error
	GetByID(ctx context.Context, id string) (*entity.Party, error)
	IsIDTaken(ctx context.Context, id string) (bool, error)
	UpdateByID(ctx context.Context, id string, data map[string]any) error
	Lock(ctx context.Context, id string, lockedAt time.Time) error
	DeleteByID(ctx context.Context, id string) error
}

type partyRepository struct{}

func NewPartyRepository() PartyRepository {
	return &partyRepository{}
}

func (r *partyRepository) Create(ctx context.Context, e *entity.Party) error {
	if err := xcontext.DB(ctx).Create(e).Error; err != nil {
		return err
	}
	return nil
}

func (r *partyRepository) GetByID(ctx context.Context, id string) (*entity.Party, error) {
	var result entity.Party
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// IsIDTaken also looks at deleted parties, their ids are never handed out
// again.
func (r *partyRepository) IsIDTaken(ctx context.Context, id string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Unscoped().Model(&entity.Party{}).
		Where("id=?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *partyRepository) UpdateByID(ctx context.Context, id string, data map[string]any) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Party{}).
		Where("id=?", id).
		Updates(data)
	if err := tx.Error; err != nil {
		return err
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Lock moves an open party to the locked status. It fails with
// ErrPartyNotOpen if the party is missing or not open anymore.
func (r *partyRepository) Lock(ctx context.Context, id string, lockedAt time.Time) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Party{}).
		Where("id=? AND status=?", id, entity.PartyOpen).
		Updates(map[string]any{
			"status":    entity.PartyLocked,
			"locked_at": lockedAt,
		})
	if err := tx.Error; err != nil {
		return err
	}

	if tx.RowsAffected != 1 {
		return ErrPartyNotOpen
	}

	return nil
}

func (r *partyRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.Party{}, "id=?", id)
	if err := tx.Error; err != nil {
		return err
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
