// Package reward computes idle-accumulation rewards from time spent
// logged out. Pure functions of two timestamps.
package reward

import (
	"math"
	"time"

	"github.com/hikari-games/foxden-server/internal/model"
)

// Accrual rates and caps. Registered accounts accrue against the
// server-recorded logout time; guests accrue at the client's local rate
// against their locally remembered last save.
const (
	SunlightPerHour  = 20
	StarlightPerHour = 20
	CapHours         = 24

	GuestSunlightPerHour  = 360
	GuestStarlightPerHour = 360
	GuestCapHours         = 12

	// MinHours is the threshold below which the reward is omitted
	// entirely (6 minutes), to avoid noisy notifications
	MinHours = 0.1
)

// Offline computes the reward for a registered account. Returns nil when
// the elapsed time is below the minimum threshold.
func Offline(lastLogout, now time.Time) *model.OfflineReward {
	return compute(lastLogout, now, SunlightPerHour, StarlightPerHour, CapHours)
}

// GuestOffline computes the reward for a guest against their
// locally-remembered last save time
func GuestOffline(lastSave, now time.Time) *model.OfflineReward {
	return compute(lastSave, now, GuestSunlightPerHour, GuestStarlightPerHour, GuestCapHours)
}

func compute(since, now time.Time, sunRate, starRate float64, capHours float64) *model.OfflineReward {
	hours := now.Sub(since).Hours()
	if hours < 0 {
		hours = 0
	}
	if hours > capHours {
		hours = capHours
	}
	if hours < MinHours {
		return nil
	}

	return &model.OfflineReward{
		Sunlight:     int64(math.Floor(hours * sunRate)),
		Starlight:    int64(math.Floor(hours * starRate)),
		OfflineHours: hours,
	}
}
