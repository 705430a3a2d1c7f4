package capacity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/openpark/parkcore/internal/parking/domain/capacity"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

const (
	ledgerMissing  = -1
	ledgerNoSpace  = 0
	ledgerApplied  = 1
	ledgerKeySpace = "parkcore:garage"
)

// reserveScript decrements the available count only when spaces remain.
// Running as a script keeps check-and-decrement atomic on the Redis side.
var reserveScript = redis.NewScript(`
local avail = redis.call('GET', KEYS[1])
if not avail then return -1 end
if tonumber(avail) <= 0 then return 0 end
redis.call('DECR', KEYS[1])
return 1
`)

// releaseScript increments the available count, capped at the total.
var releaseScript = redis.NewScript(`
local avail = redis.call('GET', KEYS[1])
local total = redis.call('GET', KEYS[2])
if not avail or not total then return -1 end
if tonumber(avail) < tonumber(total) then
	redis.call('INCR', KEYS[1])
end
return 1
`)

// RedisLedger keeps garage space counts in Redis, for deployments where
// several workers share one ledger without going through the database.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger creates a new Redis-backed capacity ledger.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

// Seed writes a garage's totals and resets its available counts.
func (l *RedisLedger) Seed(ctx context.Context, garageID uuid.UUID, carSpaces, motoSpaces int) error {
	pipe := l.client.TxPipeline()
	pipe.Set(ctx, availableKey(garageID, false), carSpaces, 0)
	pipe.Set(ctx, totalKey(garageID, false), carSpaces, 0)
	pipe.Set(ctx, availableKey(garageID, true), motoSpaces, 0)
	pipe.Set(ctx, totalKey(garageID, true), motoSpaces, 0)
	_, err := pipe.Exec(ctx)
	return err
}

// Reserve takes one space of the matching kind, or fails with ErrNoSpace.
func (l *RedisLedger) Reserve(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	keys := []string{availableKey(garageID, vehicle.UsesMotoSpace())}
	result, err := reserveScript.Run(ctx, l.client, keys).Int()
	if err != nil {
		return err
	}
	switch result {
	case ledgerMissing:
		return capacity.ErrGarageNotFound
	case ledgerNoSpace:
		return capacity.ErrNoSpace
	case ledgerApplied:
		return nil
	}
	return fmt.Errorf("unexpected reserve script result %d", result)
}

// Release returns one space of the matching kind, never past the total.
func (l *RedisLedger) Release(ctx context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	moto := vehicle.UsesMotoSpace()
	keys := []string{availableKey(garageID, moto), totalKey(garageID, moto)}
	result, err := releaseScript.Run(ctx, l.client, keys).Int()
	if err != nil {
		return err
	}
	if result == ledgerMissing {
		return capacity.ErrGarageNotFound
	}
	return nil
}

func availableKey(garageID uuid.UUID, moto bool) string {
	return fmt.Sprintf("%s:%s:%s:available", ledgerKeySpace, garageID, spaceKind(moto))
}

func totalKey(garageID uuid.UUID, moto bool) string {
	return fmt.Sprintf("%s:%s:%s:total", ledgerKeySpace, garageID, spaceKind(moto))
}

func spaceKind(moto bool) string {
	if moto {
		return "moto"
	}
	return "car"
}
