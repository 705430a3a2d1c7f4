package domain

import (
	"errors"
	"time"

	"github.com/openpark/parkcore/internal/parking/domain/value_objects"
)

var ErrDurationExceedsMax = errors.New("duration exceeds zone maximum")

// overLimitPenaltyCents is added on top of the last reachable tier fee when
// a stay runs past the schedule's final tier.
const overLimitPenaltyCents = 3000

// tier prices any stay of up to UpToMinutes (inclusive) at Cents.
type tier struct {
	UpToMinutes int
	Cents       int64
}

// schedule is a step function of total minutes. FreeMinutes are deducted
// before the tiers apply. When Plateau is set the fee stops increasing at
// the last tier instead of adding the over-limit penalty.
type schedule struct {
	FreeMinutes int
	Tiers       []tier
	Plateau     bool
}

var zoneSchedules = map[string]schedule{
	ZoneBlue: {Tiers: []tier{{90, 0}, {120, 200}}},
	ZoneGreen: {Tiers: []tier{
		{60, 50}, {120, 100}, {180, 150}, {240, 200}, {300, 250},
	}},
	ZoneYellow: {Tiers: []tier{{60, 150}, {120, 300}}},
	ZoneOrange: {
		Tiers:   []tier{{60, 100}, {120, 200}, {180, 400}, {240, 600}, {300, 3600}},
		Plateau: true,
	},
	ZoneRed: {FreeMinutes: 30, Tiers: []tier{{60, 100}, {120, 200}}},
}

func (s schedule) price(minutes int) int64 {
	minutes -= s.FreeMinutes
	if minutes <= 0 {
		return 0
	}
	for _, t := range s.Tiers {
		if minutes <= t.UpToMinutes {
			return t.Cents
		}
	}
	last := s.Tiers[len(s.Tiers)-1].Cents
	if s.Plateau {
		return last
	}
	return last + overLimitPenaltyCents
}

// Config carries the engine's garage pricing defaults. The evening window
// is a clock-time band that wraps past midnight; a stay gets the flat
// evening rate when the garage is eligible, the arrival falls inside the
// band and the stay does not exceed the maximum span.
type Config struct {
	DefaultGarageHourlyRate value_objects.Money
	DefaultEveningRate      value_objects.Money
	EveningWindowStart      int // minutes from midnight, e.g. 1170 = 19:30
	EveningWindowEnd        int // minutes from midnight, e.g. 30 = 00:30
	EveningMaxSpan          time.Duration
}

// DefaultConfig returns the system tariff defaults.
func DefaultConfig() Config {
	return Config{
		DefaultGarageHourlyRate: value_objects.MustNewMoney(200),
		DefaultEveningRate:      value_objects.MustNewMoney(500),
		EveningWindowStart:      19*60 + 30,
		EveningWindowEnd:        30,
		EveningMaxSpan:          8 * time.Hour,
	}
}

// Engine maps a location and a duration to a cost. Pure; all inputs are
// values and no state is mutated.
type Engine struct {
	cfg Config
}

// NewEngine creates a tariff engine with the given defaults.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// PriceStreet prices a street stay of the given planned duration in a zone.
// An applicable subscription zeroes the fee. Durations beyond the zone
// maximum are rejected; creation checks this precondition first, so the
// over-limit tiers are only reachable through boundary minute values.
func (e *Engine) PriceStreet(zone *Zone, duration value_objects.PlannedDuration, sub *Subscription, at time.Time) (value_objects.Money, error) {
	if zone.MaxDuration > 0 && duration.Exceeds(zone.MaxDuration) {
		return value_objects.ZeroMoney(), ErrDurationExceedsMax
	}
	if sub.CoversZone(zone.ID, at) {
		return value_objects.ZeroMoney(), nil
	}

	minutes := duration.Minutes()
	if sched, ok := zoneSchedules[zone.ID]; ok {
		return value_objects.NewMoney(sched.price(minutes))
	}

	// Linear fallback, pro-rata by minute.
	return value_objects.NewMoney(zone.HourlyRate.Cents() * int64(minutes) / 60)
}

// PriceGarage prices a garage stay from arrival to departure. Elapsed time
// is rounded up to the next half hour. An applicable subscription zeroes
// the fee; an eligible evening stay gets the flat evening rate.
func (e *Engine) PriceGarage(garage *Garage, arrival, departure time.Time, sub *Subscription) (value_objects.Money, error) {
	if departure.Before(arrival) {
		return value_objects.ZeroMoney(), errors.New("departure before arrival")
	}
	if sub.CoversGarage(arrival) {
		return value_objects.ZeroMoney(), nil
	}

	elapsed := departure.Sub(arrival)
	billedMinutes := int64((elapsed + 30*time.Minute - time.Nanosecond) / (30 * time.Minute) * 30)
	if billedMinutes == 0 {
		return value_objects.ZeroMoney(), nil
	}

	if garage.EveningRateEligible && e.inEveningWindow(arrival) && elapsed <= e.cfg.EveningMaxSpan {
		rate := garage.EveningRate
		if rate.IsZero() {
			rate = e.cfg.DefaultEveningRate
		}
		return rate, nil
	}

	rate := garage.HourlyRate
	if rate.IsZero() {
		rate = e.cfg.DefaultGarageHourlyRate
	}
	return value_objects.NewMoney(rate.Cents() * billedMinutes / 60)
}

func (e *Engine) inEveningWindow(arrival time.Time) bool {
	m := arrival.Hour()*60 + arrival.Minute()
	if e.cfg.EveningWindowStart > e.cfg.EveningWindowEnd {
		// Band wraps past midnight.
		return m >= e.cfg.EveningWindowStart || m <= e.cfg.EveningWindowEnd
	}
	return m >= e.cfg.EveningWindowStart && m <= e.cfg.EveningWindowEnd
}
