// Package shape generates target position buffers for the particle field.
package shape

import (
	"math"
	"math/rand"
	"strings"
)

// ID identifies a target shape.
type ID uint8

const (
	Unknown ID = iota
	Random
	Sphere
	Torus
	Spiral
	Cube
	Heart
	Star
	Face
)

// SpaceSize is the default radius of the RANDOM volumetric fill.
const SpaceSize = 15.0

// Oracle lists the shapes the oracle may answer with (RANDOM is reserved
// for the scattered state between answers).
var Oracle = []ID{Sphere, Torus, Spiral, Cube, Heart, Star, Face}

// All lists every known shape.
var All = []ID{Random, Sphere, Torus, Spiral, Cube, Heart, Star, Face}

var names = map[ID]string{
	Random: "RANDOM",
	Sphere: "SPHERE",
	Torus:  "TORUS",
	Spiral: "SPIRAL",
	Cube:   "CUBE",
	Heart:  "HEART",
	Star:   "STAR",
	Face:   "FACE",
}

// String returns the canonical upper-case name.
func (id ID) String() string {
	if n, ok := names[id]; ok {
		return n
	}
	return "UNKNOWN"
}

// Parse maps a shape name (case-insensitive) to its ID. Unrecognized names
// map to Unknown, which generates an all-zero buffer.
func Parse(s string) ID {
	s = strings.ToUpper(strings.TrimSpace(s))
	for id, n := range names {
		if n == s {
			return id
		}
	}
	return Unknown
}

// Generate returns a flat xyz buffer of length count*3 sampled from the shape.
// SPIRAL is a pure function of index and count; every other shape draws from
// rng and differs between calls. Unknown shapes leave every particle at the
// origin.
func Generate(id ID, count int, rng *rand.Rand) []float32 {
	return GenerateSized(id, count, SpaceSize, rng)
}

// GenerateSized is Generate with an explicit RANDOM fill radius.
func GenerateSized(id ID, count int, spaceSize float64, rng *rand.Rand) []float32 {
	if count < 0 {
		count = 0
	}
	positions := make([]float32, count*3)
	if count == 0 {
		return positions
	}

	for i := 0; i < count; i++ {
		var x, y, z float64

		switch id {
		case Random:
			x, y, z = ball(spaceSize, rng)
		case Sphere:
			x, y, z = sphere(rng)
		case Torus:
			x, y, z = torus(rng)
		case Spiral:
			x, y, z = spiral(i, count)
		case Cube:
			x, y, z = cube(rng)
		case Heart:
			x, y, z = heart(rng)
		case Star:
			x, y, z = star(rng)
		case Face:
			x, y, z = face(rng)
		}

		i3 := i * 3
		positions[i3] = float32(x)
		positions[i3+1] = float32(y)
		positions[i3+2] = float32(z)
	}
	return positions
}

// direction returns spherical angles for a uniform direction.
func direction(rng *rand.Rand) (theta, phi float64) {
	theta = rng.Float64() * math.Pi * 2
	phi = math.Acos(rng.Float64()*2 - 1)
	return theta, phi
}

func polar(r, theta, phi float64) (x, y, z float64) {
	return r * math.Sin(phi) * math.Cos(theta),
		r * math.Sin(phi) * math.Sin(theta),
		r * math.Cos(phi)
}

// ball fills a sphere volumetrically; the cube root keeps density uniform.
func ball(radius float64, rng *rand.Rand) (x, y, z float64) {
	theta, phi := direction(rng)
	r := math.Cbrt(rng.Float64()) * radius
	return polar(r, theta, phi)
}

func sphere(rng *rand.Rand) (x, y, z float64) {
	theta, phi := direction(rng)
	r := 4 + rng.Float64()*0.5
	return polar(r, theta, phi)
}

func torus(rng *rand.Rand) (x, y, z float64) {
	const major, minor = 4.0, 1.5
	u := rng.Float64() * math.Pi * 2
	v := rng.Float64() * math.Pi * 2
	x = (major + minor*math.Cos(v)) * math.Cos(u)
	y = (major + minor*math.Cos(v)) * math.Sin(u)
	z = minor * math.Sin(v)
	return x, y, z
}

func spiral(i, count int) (x, y, z float64) {
	angle := float64(i) * 0.1
	t := float64(i) / float64(count)
	r := t * 8
	return r * math.Cos(angle), t*12 - 6, r * math.Sin(angle)
}

func cube(rng *rand.Rand) (x, y, z float64) {
	const side = 5.0
	const d = side / 2
	face := rng.Intn(6)
	u := (rng.Float64() - 0.5) * side
	v := (rng.Float64() - 0.5) * side
	switch face {
	case 0:
		return d, u, v
	case 1:
		return -d, u, v
	case 2:
		return u, d, v
	case 3:
		return u, -d, v
	case 4:
		return u, v, d
	default:
		return u, v, -d
	}
}

func heart(rng *rand.Rand) (x, y, z float64) {
	const scale = 0.25
	t := rng.Float64() * math.Pi * 2
	hx := 16 * math.Pow(math.Sin(t), 3)
	hy := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
	return hx * scale, hy * scale, rng.Float64() - 0.5
}

// star perturbs a centre-weighted ball radially with two angular harmonics.
func star(rng *rand.Rand) (x, y, z float64) {
	r := math.Pow(rng.Float64(), 3) * 6
	theta, phi := direction(rng)
	spike := 1 + math.Sin(theta*5)*math.Sin(phi*5)*0.5
	return polar(r*spike, theta, phi)
}

// face is a stretched hemisphere with an eye/mouth band pushed far behind
// the camera to read as negative space.
func face(rng *rand.Rand) (x, y, z float64) {
	const r = 4.0
	theta := rng.Float64() * math.Pi
	phi := rng.Float64() * math.Pi
	x = r * math.Sin(theta) * math.Cos(phi)
	y = r * math.Sin(theta) * math.Sin(phi) * 1.5
	z = r * math.Cos(theta) * 0.5
	if y > 0.5 && y < 2 && math.Abs(x) > 1 && math.Abs(x) < 2.5 {
		z = -100
	}
	return x, y, z
}
