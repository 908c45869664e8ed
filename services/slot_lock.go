// services/slot_lock.go
package services

import (
	"context"
	"fmt"
	"time"

	"studiopro-backend/config"
	"studiopro-backend/utils"

	"github.com/google/uuid"
)

// slotHoldTTL bounds how long a crashed request can keep a slot held.
const slotHoldTTL = 15 * time.Second

// AcquireSlotHold takes a short-lived advisory hold on a studio/date/
// window so two simultaneous booking requests for the same slot
// serialize before the database conflict check. The hold narrows the
// race; the transaction's re-check closes it. Without redis the hold is
// a no-op and the database check stands alone.
func AcquireSlotHold(ctx context.Context, studioID uuid.UUID, date time.Time, w Window) (string, error) {
	if config.Redis == nil {
		return "", nil
	}
	key := fmt.Sprintf("slothold:%s:%s:%d-%d", studioID, utils.BeginningOfDay(date).Format("2006-01-02"), w.Start, w.End)
	ok, err := config.Redis.SetNX(ctx, key, 1, slotHoldTTL).Result()
	if err != nil {
		// Redis being down must not block bookings.
		return "", nil
	}
	if !ok {
		return "", ErrSlotHeld
	}
	return key, nil
}

// ReleaseSlotHold drops a hold taken by AcquireSlotHold.
func ReleaseSlotHold(ctx context.Context, key string) {
	if config.Redis == nil || key == "" {
		return
	}
	config.Redis.Del(ctx, key)
}
