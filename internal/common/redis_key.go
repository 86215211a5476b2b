package common

import (
	"fmt"
)

func RedisKeyPartyHold(partyID string) string {
	return fmt.Sprintf("partyhold:%s", partyID)
}
