package value

import (
	"errors"
	"fmt"
)

// Physical constants used to convert journal masses to kilograms.
const (
	EarthMass = 5.972e24   // kg
	SolarMass = 1.98847e30 // kg
)

// ErrUnknownTerraformState indicates a TerraformState string the journal is
// not known to emit.
var ErrUnknownTerraformState = errors.New("unknown terraform state")

// Class is a body classification accepted by BaseValue. It is implemented
// only by StarClass and PlanetClass.
type Class interface {
	fmt.Stringer
	isClass()
}

// StarClass enumerates the journal's StarType values.
type StarClass int

const (
	StarOther StarClass = iota // StarType not in this list
	StarO
	StarB
	StarA
	StarF
	StarG
	StarK
	StarM
	StarL
	StarT
	StarY
	StarTTS
	StarAeBe
	StarW
	StarWN
	StarWNC
	StarWC
	StarWO
	StarCS
	StarC
	StarCN
	StarCJ
	StarCH
	StarCHd
	StarMS
	StarS
	StarD
	StarDA
	StarDAB
	StarDAO
	StarDAZ
	StarDAV
	StarDB
	StarDBZ
	StarDBV
	StarDO
	StarDOV
	StarDQ
	StarDC
	StarDCV
	StarDX
	StarN
	StarH
	StarX
	StarSupermassiveBlackHole
	StarBlueWhiteSuperGiant
	StarWhiteSuperGiant
	StarRedSuperGiant
	StarRedGiant
	StarOrangeGiant
	StarRoguePlanet
	StarNebula
	StarStellarRemnantNebula

	numStarClasses
)

// starTypes holds the journal spelling of each StarClass, indexed by value.
var starTypes = [numStarClasses]string{
	"", "O", "B", "A", "F", "G", "K", "M", "L", "T", "Y", "TTS", "AeBe",
	"W", "WN", "WNC", "WC", "WO", "CS", "C", "CN", "CJ", "CH", "CHd", "MS", "S",
	"D", "DA", "DAB", "DAO", "DAZ", "DAV", "DB", "DBZ", "DBV", "DO", "DOV", "DQ", "DC", "DCV", "DX",
	"N", "H", "X", "SupermassiveBlackHole",
	"A_BlueWhiteSuperGiant", "F_WhiteSuperGiant", "M_RedSuperGiant", "M_RedGiant", "K_OrangeGiant",
	"RoguePlanet", "Nebula", "StellarRemnantNebula",
}

var starClassByType = func() map[string]StarClass {
	m := make(map[string]StarClass, numStarClasses)
	for i, s := range starTypes {
		if s != "" {
			m[s] = StarClass(i)
		}
	}
	return m
}()

// ParseStarClass maps a journal StarType to its class. Unrecognised types map
// to StarOther, which values in the default star bucket.
func ParseStarClass(s string) StarClass {
	if c, ok := starClassByType[s]; ok {
		return c
	}
	return StarOther
}

func (c StarClass) valid() bool { return c >= 0 && c < numStarClasses }

// String returns the journal StarType spelling.
func (c StarClass) String() string {
	if !c.valid() {
		return fmt.Sprintf("StarClass(%d)", int(c))
	}
	if c == StarOther {
		return "Other"
	}
	return starTypes[c]
}

// IsWhiteDwarf reports whether c is one of the D* classes.
func (c StarClass) IsWhiteDwarf() bool {
	return c >= StarD && c <= StarDX
}

func (StarClass) isClass() {}

// PlanetClass enumerates the journal's PlanetClass values.
type PlanetClass int

const (
	PlanetOther PlanetClass = iota // PlanetClass not in this list
	PlanetMetalRich
	PlanetHighMetalContent
	PlanetRocky
	PlanetIcy
	PlanetRockyIce
	PlanetEarthlike
	PlanetWater
	PlanetAmmonia
	PlanetWaterGiant
	PlanetWaterGiantLife
	PlanetGasGiantWaterLife
	PlanetGasGiantAmmoniaLife
	PlanetGasGiant1
	PlanetGasGiant2
	PlanetGasGiant3
	PlanetGasGiant4
	PlanetGasGiant5
	PlanetHeliumRichGiant
	PlanetHeliumGiant

	numPlanetClasses
)

// planetNames holds the journal display name of each PlanetClass.
var planetNames = [numPlanetClasses]string{
	"",
	"Metal rich body",
	"High metal content body",
	"Rocky body",
	"Icy body",
	"Rocky ice body",
	"Earthlike body",
	"Water world",
	"Ammonia world",
	"Water giant",
	"Water giant with life",
	"Gas giant with water based life",
	"Gas giant with ammonia based life",
	"Sudarsky class I gas giant",
	"Sudarsky class II gas giant",
	"Sudarsky class III gas giant",
	"Sudarsky class IV gas giant",
	"Sudarsky class V gas giant",
	"Helium rich gas giant",
	"Helium gas giant",
}

var planetClassByName = func() map[string]PlanetClass {
	m := make(map[string]PlanetClass, numPlanetClasses)
	for i, s := range planetNames {
		if s != "" {
			m[s] = PlanetClass(i)
		}
	}
	return m
}()

// ParsePlanetClass maps a journal PlanetClass display name to its class.
// Unrecognised names map to PlanetOther.
func ParsePlanetClass(s string) PlanetClass {
	if c, ok := planetClassByName[s]; ok {
		return c
	}
	return PlanetOther
}

func (c PlanetClass) valid() bool { return c >= 0 && c < numPlanetClasses }

// String returns the journal display name.
func (c PlanetClass) String() string {
	if !c.valid() {
		return fmt.Sprintf("PlanetClass(%d)", int(c))
	}
	if c == PlanetOther {
		return "Other"
	}
	return planetNames[c]
}

func (PlanetClass) isClass() {}

// TerraformState is a planet's terraforming status.
type TerraformState int

const (
	NotTerraformable TerraformState = iota
	Terraformable
	Terraforming
	Terraformed
)

// ParseTerraformState maps the journal TerraformState field. The journal
// writes an empty string for bodies that cannot be terraformed.
func ParseTerraformState(s string) (TerraformState, error) {
	switch s {
	case "", "NotTerraformable":
		return NotTerraformable, nil
	case "Terraformable":
		return Terraformable, nil
	case "Terraforming":
		return Terraforming, nil
	case "Terraformed":
		return Terraformed, nil
	}
	return NotTerraformable, fmt.Errorf("%w: %q", ErrUnknownTerraformState, s)
}

func (t TerraformState) String() string {
	switch t {
	case Terraformable:
		return "Terraformable"
	case Terraforming:
		return "Terraforming"
	case Terraformed:
		return "Terraformed"
	}
	return "NotTerraformable"
}
