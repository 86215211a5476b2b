package migration

import (
	"context"

	"github.com/questx-lab/secretsanta/internal/entity"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
)

const participantJoinOrderIndex = "idx_participant_party_created"

// migrate0001 indexes the roster by join order, which is the order of every
// participant listing.
func migrate0001(ctx context.Context) error {
	db := xcontext.DB(ctx)
	if db.Migrator().HasIndex(&entity.Participant{}, participantJoinOrderIndex) {
		return nil
	}

	return db.Exec("CREATE INDEX " + participantJoinOrderIndex +
		" ON participants (party_id, created_at)").Error
}
