// Package value computes the cartographic value of scanned bodies.
//
// The formula and its constants are defined by the game, not derived, and
// are reproduced exactly. See
// https://forums.frontier.co.uk/threads/exploration-value-formulae.232000/
package value

import (
	"fmt"
	"math"
)

const (
	q = 0.56591828

	multFirstDiscoveredAndMapped = 3.699622554
	multFirstMapped              = 8.0956
	multMapped                   = 3.3333333333

	odysseyBonusFloor = 555
	minimumValue      = 500
)

// Options selects the discovery and sale conditions a value is computed for.
type Options struct {
	FirstDiscoverer  bool // no one discovered the body before
	Mapped           bool // the body was surface mapped
	FirstMapped      bool // no one mapped the body before
	EfficiencyBonus  bool // mapped within the probe target
	Odyssey          bool
	FleetCarrierSale bool // sold through a fleet carrier
}

// Value returns the cartographic value of a body with the given base value
// and mass. Mass is in Earth masses for planets and solar masses for stars.
func Value(base int, mass float64, opts Options) int {
	mult := 1.0
	if opts.Mapped {
		switch {
		case opts.FirstDiscoverer && opts.FirstMapped:
			mult = multFirstDiscoveredAndMapped
		case opts.FirstMapped:
			mult = multFirstMapped
		default:
			mult = multMapped
		}
	}

	b := float64(base)
	v := (b + b*q*math.Pow(mass, 0.2)) * mult

	if opts.Mapped {
		if opts.Odyssey {
			// Equivalent to v += max(v*0.3, 555).
			if v*0.3 > odysseyBonusFloor {
				v += v * 0.3
			} else {
				v += odysseyBonusFloor
			}
		}
		if opts.EfficiencyBonus {
			v *= 1.25
		}
	}

	v = math.Max(minimumValue, v)
	if opts.FirstDiscoverer {
		v *= 2.6
	}
	if opts.FleetCarrierSale {
		v *= 0.75
	}
	return int(math.RoundToEven(v))
}

// BaseValue looks up the base value of a body class. The terraform state only
// matters for planets. BaseValue panics when class is nil or not a valid
// StarClass or PlanetClass.
func BaseValue(class Class, ts TerraformState) int {
	switch c := class.(type) {
	case PlanetClass:
		if !c.valid() {
			panic(fmt.Sprintf("value: invalid planet class %d", int(c)))
		}
		return planetBaseValue(c, ts)
	case StarClass:
		if !c.valid() {
			panic(fmt.Sprintf("value: invalid star class %d", int(c)))
		}
		return starBaseValue(c)
	}
	panic(fmt.Sprintf("value: class must be a StarClass or PlanetClass, got %T", class))
}

func planetBaseValue(c PlanetClass, ts TerraformState) int {
	terraformable := ts != NotTerraformable
	switch c {
	case PlanetMetalRich:
		return 21790
	case PlanetAmmonia:
		return 96932
	case PlanetGasGiant1:
		return 1656
	case PlanetGasGiant2, PlanetHighMetalContent:
		if terraformable {
			return 100677
		}
		return 9654
	case PlanetWater, PlanetEarthlike:
		if terraformable {
			return 116295
		}
		return 64831
	}
	if terraformable {
		return 93328
	}
	return 300
}

func starBaseValue(c StarClass) int {
	switch {
	case c == StarN, c == StarH, c == StarSupermassiveBlackHole:
		return 22628
	case c.IsWhiteDwarf():
		return 14057
	}
	return 1200
}
