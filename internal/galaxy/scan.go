package galaxy

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/papapumpkin/cartographer/internal/value"
)

// scanRecord is the typed view of the fields every Scan carries. It is
// decoded once the common schema has accepted the payload.
type scanRecord struct {
	StarSystem            string           `json:"StarSystem"`
	SystemAddress         int64            `json:"SystemAddress"`
	BodyName              string           `json:"BodyName"`
	BodyID                int              `json:"BodyID"`
	DistanceFromArrivalLS float64          `json:"DistanceFromArrivalLS"`
	WasDiscovered         bool             `json:"WasDiscovered"`
	WasMapped             bool             `json:"WasMapped"`
	Parents               []map[string]int `json:"Parents"`

	SemiMajorAxis      *float64 `json:"SemiMajorAxis"`
	Eccentricity       float64  `json:"Eccentricity"`
	OrbitalInclination float64  `json:"OrbitalInclination"`
	Periapsis          float64  `json:"Periapsis"`
	OrbitalPeriod      float64  `json:"OrbitalPeriod"`
	RotationPeriod     float64  `json:"RotationPeriod"`
}

// Variant records are decoded only after the variant schema has accepted the
// payload, so a badly typed variant field is reported like a missing one.
type physicalRecord struct {
	Radius             float64 `json:"Radius"`
	SurfaceTemperature float64 `json:"SurfaceTemperature"`
	AxialTilt          float64 `json:"AxialTilt"`
}

type starRecord struct {
	physicalRecord
	StarType          string  `json:"StarType"`
	Subclass          int     `json:"Subclass"`
	AgeMY             float64 `json:"Age_MY"`
	Luminosity        string  `json:"Luminosity"`
	AbsoluteMagnitude float64 `json:"AbsoluteMagnitude"`
	StellarMass       float64 `json:"StellarMass"`
}

type planetRecord struct {
	physicalRecord
	PlanetClass     string  `json:"PlanetClass"`
	TerraformState  string  `json:"TerraformState"`
	Atmosphere      string  `json:"Atmosphere"`
	Volcanism       string  `json:"Volcanism"`
	MassEM          float64 `json:"MassEM"`
	SurfaceGravity  float64 `json:"SurfaceGravity"`
	SurfacePressure float64 `json:"SurfacePressure"`
	Landable        bool    `json:"Landable"`
	TidalLock       bool    `json:"TidalLock"`
}

func (r *physicalRecord) physical() Physical {
	return Physical{
		Radius:             r.Radius,
		SurfaceTemperature: r.SurfaceTemperature,
		AxialTilt:          r.AxialTilt,
	}
}

// classify determines a scanned body's kind from the payload shape alone.
func classify(doc map[string]any) Kind {
	if _, ok := doc["StarType"]; ok {
		return KindStar
	}
	if _, ok := doc["PlanetClass"]; ok {
		return KindPlanet
	}
	return KindRing
}

// ApplyScan folds one Scan payload into the model and returns the system and
// body it describes. Reapplying a payload overwrites the body's attributes
// with the same values and returns the same pointers.
//
// The payload is rejected without changes when its common fields are
// malformed or when the body, or one of its parents, is already known as a
// different kind. When only the variant fields are malformed the system and
// body are returned with their common fields applied, together with an error
// wrapping ErrMalformedScan.
func (m *Model) ApplyScan(payload []byte) (*System, *Body, error) {
	doc, err := decodeDocument(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedScan, err)
	}
	if err := scanSchema.Validate(doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedScan, err)
	}
	var rec scanRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedScan, err)
	}

	kind := classify(doc)
	refs := make([]ParentRef, 0, len(rec.Parents))
	for _, p := range rec.Parents {
		for tag, id := range p {
			refs = append(refs, ParentRef{Kind: parentKind(tag), ID: id})
		}
	}

	var known map[int]*Body
	if s, ok := m.systems[rec.SystemAddress]; ok {
		known = s.bodies
	}
	if err := checkKinds(rec.SystemAddress, known, rec.BodyID, kind, refs); err != nil {
		return nil, nil, err
	}

	sys := m.resolveSystem(rec.SystemAddress, rec.StarSystem)

	body := sys.resolveBody(rec.BodyID, kind)
	body.Name = rec.BodyName
	body.DistanceLS = rec.DistanceFromArrivalLS
	body.WasDiscovered = rec.WasDiscovered
	body.WasMapped = rec.WasMapped
	body.Parents = refs
	for _, ref := range refs {
		sys.resolveBody(ref.ID, ref.Kind)
	}
	sys.setMain(body.ID, len(refs) == 0)

	body.Orbit = nil
	if rec.SemiMajorAxis != nil {
		body.Orbit = &Orbit{
			SemiMajorAxis:  *rec.SemiMajorAxis,
			Eccentricity:   rec.Eccentricity,
			Inclination:    rec.OrbitalInclination,
			Periapsis:      rec.Periapsis,
			OrbitalPeriod:  rec.OrbitalPeriod,
			RotationPeriod: rec.RotationPeriod,
		}
	}

	switch kind {
	case KindStar:
		var star starRecord
		if err := decodeVariant(starSchema, doc, payload, &star); err != nil {
			return sys, body, fmt.Errorf("%w: star %q: %v", ErrMalformedScan, rec.BodyName, err)
		}
		body.Star = &StarData{
			Physical:          star.physical(),
			Class:             value.ParseStarClass(star.StarType),
			Type:              star.StarType,
			Subclass:          star.Subclass,
			AgeMY:             star.AgeMY,
			Luminosity:        star.Luminosity,
			AbsoluteMagnitude: star.AbsoluteMagnitude,
			StellarMass:       star.StellarMass,
		}
	case KindPlanet:
		var planet planetRecord
		if err := decodeVariant(planetSchema, doc, payload, &planet); err != nil {
			return sys, body, fmt.Errorf("%w: planet %q: %v", ErrMalformedScan, rec.BodyName, err)
		}
		ts, err := value.ParseTerraformState(planet.TerraformState)
		if err != nil {
			return sys, body, fmt.Errorf("%w: planet %q: %w", ErrMalformedScan, rec.BodyName, err)
		}
		body.Planet = &PlanetData{
			Physical:        planet.physical(),
			Class:           value.ParsePlanetClass(planet.PlanetClass),
			ClassName:       planet.PlanetClass,
			TerraformState:  ts,
			Atmosphere:      planet.Atmosphere,
			Volcanism:       planet.Volcanism,
			MassEM:          planet.MassEM,
			SurfaceGravity:  planet.SurfaceGravity,
			SurfacePressure: planet.SurfacePressure,
			Landable:        planet.Landable,
			TidalLock:       planet.TidalLock,
		}
	}
	body.Scanned = true
	return sys, body, nil
}

// checkKinds verifies that the scanned body and every referenced parent
// either do not exist yet or already have the expected kind.
func checkKinds(address int64, known map[int]*Body, id int, kind Kind, refs []ParentRef) error {
	if b, ok := known[id]; ok && b.Kind != kind {
		return &VariantError{SystemAddress: address, BodyID: id, Have: b.Kind, Want: kind}
	}
	seen := map[int]Kind{id: kind}
	for _, ref := range refs {
		have, ok := seen[ref.ID]
		if !ok {
			if b, exists := known[ref.ID]; exists {
				have, ok = b.Kind, true
			}
		}
		if ok && have != ref.Kind {
			return &VariantError{SystemAddress: address, BodyID: ref.ID, Have: have, Want: ref.Kind}
		}
		seen[ref.ID] = ref.Kind
	}
	return nil
}

// decodeVariant validates doc against the variant schema and then decodes
// the variant fields of payload into dst.
func decodeVariant(schema *jsonschema.Schema, doc map[string]any, payload []byte, dst any) error {
	if err := schema.Validate(doc); err != nil {
		return err
	}
	return json.Unmarshal(payload, dst)
}
