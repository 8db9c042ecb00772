package galaxy

import (
	"github.com/papapumpkin/cartographer/internal/value"
)

// Kind is the variant of a Body. It is fixed when the body is created.
type Kind int

const (
	KindGeneric    Kind = iota // referenced with an unrecognised parent type
	KindStar                   // carries StarData once scanned
	KindPlanet                 // carries PlanetData once scanned
	KindRing                   // rings and belt clusters
	KindBarycenter             // "Null" parent; never scanned directly
)

func (k Kind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindPlanet:
		return "planet"
	case KindRing:
		return "ring"
	case KindBarycenter:
		return "barycenter"
	}
	return "generic"
}

// parentKind maps the key of a Parents entry to a body kind.
func parentKind(tag string) Kind {
	switch tag {
	case "Star":
		return KindStar
	case "Planet":
		return KindPlanet
	case "Ring":
		return KindRing
	case "Null":
		return KindBarycenter
	}
	return KindGeneric
}

// ParentRef is a weak reference to a parent body in the same system. It is
// resolved through System.Body, never held as a pointer.
type ParentRef struct {
	Kind Kind
	ID   int
}

// Orbit holds the orbital parameters of a body that orbits something.
type Orbit struct {
	SemiMajorAxis  float64 // metres
	Eccentricity   float64
	Inclination    float64 // degrees
	Periapsis      float64 // degrees
	OrbitalPeriod  float64 // seconds
	RotationPeriod float64 // seconds, zero when not reported
}

// Physical holds measurements shared by stars and planets.
type Physical struct {
	Radius             float64 // metres
	SurfaceTemperature float64 // kelvin
	AxialTilt          float64 // radians
}

// StarData is the star-specific part of a scanned body.
type StarData struct {
	Physical
	Class             value.StarClass
	Type              string // raw StarType
	Subclass          int
	AgeMY             float64 // millions of years
	Luminosity        string
	AbsoluteMagnitude float64
	StellarMass       float64 // solar masses
}

// Mass returns the star's mass in kilograms.
func (s *StarData) Mass() float64 {
	return s.StellarMass * value.SolarMass
}

// PlanetData is the planet-specific part of a scanned body.
type PlanetData struct {
	Physical
	Class           value.PlanetClass
	ClassName       string // raw PlanetClass
	TerraformState  value.TerraformState
	Atmosphere      string
	Volcanism       string
	MassEM          float64 // Earth masses
	SurfaceGravity  float64 // m/s²
	SurfacePressure float64 // pascals
	Landable        bool
	TidalLock       bool
}

// Mass returns the planet's mass in kilograms.
func (p *PlanetData) Mass() float64 {
	return p.MassEM * value.EarthMass
}

// Body is a star, planet, ring or barycenter within a system. A body created
// only to satisfy a parent reference is a placeholder: Scanned is false and
// Star and Planet are nil until its own Scan arrives.
type Body struct {
	ID            int
	SystemAddress int64
	Kind          Kind
	Scanned       bool

	Name          string
	DistanceLS    float64 // light seconds from the arrival point
	WasDiscovered bool
	WasMapped     bool
	Parents       []ParentRef // nearest first
	Orbit         *Orbit      // nil for bodies that orbit nothing

	Star   *StarData   // set only for scanned KindStar bodies
	Planet *PlanetData // set only for scanned KindPlanet bodies
}

// Valuation selects the sale conditions for Body.Value.
type Valuation struct {
	Mapped           bool // planets only
	Efficient        bool // mapped within the probe target
	Odyssey          bool
	FleetCarrierSale bool
}

// Value returns the body's cartographic value. The second result is false
// for bodies that have no value of their own: placeholders, rings,
// barycenters and generic bodies. Stars cannot be mapped, so Mapped and
// Efficient are ignored for them.
func (b *Body) Value(v Valuation) (int, bool) {
	opts := value.Options{
		FirstDiscoverer:  !b.WasDiscovered,
		FirstMapped:      !b.WasMapped,
		Odyssey:          v.Odyssey,
		FleetCarrierSale: v.FleetCarrierSale,
	}
	switch {
	case b.Star != nil:
		return value.Value(value.BaseValue(b.Star.Class, value.NotTerraformable), b.Star.StellarMass, opts), true
	case b.Planet != nil:
		opts.Mapped = v.Mapped
		opts.EfficiencyBonus = v.Efficient
		base := value.BaseValue(b.Planet.Class, b.Planet.TerraformState)
		return value.Value(base, b.Planet.MassEM, opts), true
	}
	return 0, false
}
