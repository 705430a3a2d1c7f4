package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func currentSub(kind SubscriptionKind, zoneID string, at time.Time) *Subscription {
	return &Subscription{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		Kind:       kind,
		ZoneID:     zoneID,
		ValidFrom:  at.Add(-time.Hour),
		ValidUntil: at.Add(time.Hour),
		Active:     true,
	}
}

func TestSubscription_IsCurrent(t *testing.T) {
	now := time.Now()

	t.Run("nil is never current", func(t *testing.T) {
		var sub *Subscription
		assert.False(t, sub.IsCurrent(now))
	})

	t.Run("inactive is never current", func(t *testing.T) {
		sub := currentSub(SubscriptionWeekly, "", now)
		sub.Active = false
		assert.False(t, sub.IsCurrent(now))
	})

	t.Run("validity window is inclusive", func(t *testing.T) {
		sub := currentSub(SubscriptionWeekly, "", now)
		assert.True(t, sub.IsCurrent(sub.ValidFrom))
		assert.True(t, sub.IsCurrent(sub.ValidUntil))
		assert.False(t, sub.IsCurrent(sub.ValidFrom.Add(-time.Second)))
		assert.False(t, sub.IsCurrent(sub.ValidUntil.Add(time.Second)))
	})
}

func TestSubscription_CoversZone(t *testing.T) {
	now := time.Now()

	assert.True(t, currentSub(SubscriptionZonePass, ZoneGreen, now).CoversZone(ZoneGreen, now))
	assert.False(t, currentSub(SubscriptionZonePass, ZoneGreen, now).CoversZone(ZoneBlue, now))
	assert.True(t, currentSub(SubscriptionWeekly, "", now).CoversZone(ZoneRed, now))
	assert.True(t, currentSub(SubscriptionAnnual, "", now).CoversZone(ZoneOrange, now))
	assert.False(t, currentSub(SubscriptionPayPerUse, "", now).CoversZone(ZoneBlue, now))

	var nilSub *Subscription
	assert.False(t, nilSub.CoversZone(ZoneBlue, now))
}

func TestSubscription_CoversGarage(t *testing.T) {
	now := time.Now()

	assert.True(t, currentSub(SubscriptionWeekly, "", now).CoversGarage(now))
	assert.True(t, currentSub(SubscriptionAnnual, "", now).CoversGarage(now))
	assert.False(t, currentSub(SubscriptionZonePass, ZoneBlue, now).CoversGarage(now))
	assert.False(t, currentSub(SubscriptionPayPerUse, "", now).CoversGarage(now))
}
