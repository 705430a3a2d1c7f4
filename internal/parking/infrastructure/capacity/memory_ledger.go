package capacity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/openpark/parkcore/internal/parking/domain/capacity"
	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

type spaceCount struct {
	total     int
	available int
}

type garageCounts struct {
	car  spaceCount
	moto spaceCount
}

// MemoryLedger is an in-memory capacity ledger for local mode and tests.
// A single mutex makes every reserve and release atomic.
type MemoryLedger struct {
	mu      sync.Mutex
	garages map[uuid.UUID]*garageCounts
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{garages: make(map[uuid.UUID]*garageCounts)}
}

// Register seeds the ledger with a garage's totals. All spaces start available.
func (l *MemoryLedger) Register(garageID uuid.UUID, carSpaces, motoSpaces int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.garages[garageID] = &garageCounts{
		car:  spaceCount{total: carSpaces, available: carSpaces},
		moto: spaceCount{total: motoSpaces, available: motoSpaces},
	}
}

// Reserve takes one space of the matching kind, or fails with ErrNoSpace.
func (l *MemoryLedger) Reserve(_ context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts, ok := l.garages[garageID]
	if !ok {
		return capacity.ErrGarageNotFound
	}
	space := counts.space(vehicle)
	if space.available <= 0 {
		return capacity.ErrNoSpace
	}
	space.available--
	return nil
}

// Release returns one space of the matching kind. A release beyond the
// garage's total is a no-op.
func (l *MemoryLedger) Release(_ context.Context, garageID uuid.UUID, vehicle value_objects.VehicleKind) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts, ok := l.garages[garageID]
	if !ok {
		return capacity.ErrGarageNotFound
	}
	space := counts.space(vehicle)
	if space.available < space.total {
		space.available++
	}
	return nil
}

// Available reports the free spaces of the given kind, for tests and status.
func (l *MemoryLedger) Available(garageID uuid.UUID, vehicle value_objects.VehicleKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts, ok := l.garages[garageID]
	if !ok {
		return 0
	}
	return counts.space(vehicle).available
}

func (c *garageCounts) space(vehicle value_objects.VehicleKind) *spaceCount {
	if vehicle.UsesMotoSpace() {
		return &c.moto
	}
	return &c.car
}
