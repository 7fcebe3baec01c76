// Package units carries the unit system used for every quantity-bearing
// value of a run. A System is created once per run and handed to each
// component that builds or converts quantities; there is no package-level
// registry.
package units

import (
	"fmt"
	"strings"
)

// Unit is a canonical unit symbol, e.g. "m" or "1/h".
type Unit string

const (
	Dimensionless Unit = ""
	Meter         Unit = "m"
	Millimeter    Unit = "mm"
	Centimeter    Unit = "cm"
	PerHour       Unit = "1/h"
	WattPerM2K    Unit = "W/(m2*K)"
	WattPerMK     Unit = "W/(m*K)"
	KgPerM3       Unit = "kg/m3"
	JoulePerKgK   Unit = "J/(kg*K)"
)

// Quantity is a magnitude bound to a unit of a specific System.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (q Quantity) String() string {
	if q.Unit == Dimensionless {
		return fmt.Sprintf("%g", q.Value)
	}
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}

type conversion struct {
	base   Unit
	factor float64
}

// System is the unit-system context of one run. It is safe for concurrent
// reads once constructed.
type System struct {
	name  string
	units map[Unit]conversion
}

// NewSystem returns the SI based system used for building constructions.
func NewSystem() *System {
	s := &System{name: "si", units: map[Unit]conversion{}}
	s.register(Dimensionless, Dimensionless, 1)
	s.register(Meter, Meter, 1)
	s.register(Centimeter, Meter, 0.01)
	s.register(Millimeter, Meter, 0.001)
	s.register(PerHour, PerHour, 1)
	s.register(WattPerM2K, WattPerM2K, 1)
	s.register(WattPerMK, WattPerMK, 1)
	s.register(KgPerM3, KgPerM3, 1)
	s.register(JoulePerKgK, JoulePerKgK, 1)
	return s
}

func (s *System) register(u, base Unit, factor float64) {
	s.units[u] = conversion{base: base, factor: factor}
}

// Name identifies the system, used in logs.
func (s *System) Name() string { return s.name }

// Parse maps a unit symbol as written in data sources to a known Unit.
// Aliases such as "ACH" and "dimensionless" are accepted.
func (s *System) Parse(symbol string) (Unit, error) {
	sym := strings.TrimSpace(symbol)
	switch strings.ToLower(sym) {
	case "", "dimensionless", "-", "ratio", "fraction":
		return Dimensionless, nil
	case "ach", "1/h", "1/hour", "/h":
		return PerHour, nil
	}
	u := Unit(sym)
	if _, ok := s.units[u]; !ok {
		return "", fmt.Errorf("unit %q is not defined in system %s", symbol, s.name)
	}
	return u, nil
}

// Quantity builds a quantity after checking the unit belongs to the system.
func (s *System) Quantity(value float64, u Unit) (Quantity, error) {
	if _, ok := s.units[u]; !ok {
		return Quantity{}, fmt.Errorf("unit %q is not defined in system %s", u, s.name)
	}
	return Quantity{Value: value, Unit: u}, nil
}

// MustQuantity is Quantity for units known at compile time.
func (s *System) MustQuantity(value float64, u Unit) Quantity {
	q, err := s.Quantity(value, u)
	if err != nil {
		panic(err)
	}
	return q
}

// Convert returns q expressed in unit to. Both units must share a base.
func (s *System) Convert(q Quantity, to Unit) (Quantity, error) {
	from, ok := s.units[q.Unit]
	if !ok {
		return Quantity{}, fmt.Errorf("unit %q is not defined in system %s", q.Unit, s.name)
	}
	target, ok := s.units[to]
	if !ok {
		return Quantity{}, fmt.Errorf("unit %q is not defined in system %s", to, s.name)
	}
	if from.base != target.base {
		return Quantity{}, fmt.Errorf("cannot convert %s to %s", q.Unit, to)
	}
	return Quantity{Value: q.Value * from.factor / target.factor, Unit: to}, nil
}
