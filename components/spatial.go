package components

// Position represents an effect entity's world position.
type Position struct {
	X, Y, Z float32
}

// Velocity represents an effect entity's velocity per frame.
type Velocity struct {
	X, Y, Z float32
}

// Lifetime counts down the frames an effect entity has left.
type Lifetime struct {
	Remaining int32
	Total     int32
}

// Fraction returns the remaining life in [0, 1].
func (l Lifetime) Fraction() float32 {
	if l.Total <= 0 {
		return 0
	}
	return float32(l.Remaining) / float32(l.Total)
}

// Ring is an expanding shockwave spawned by an explosion.
type Ring struct {
	Radius float32
	Speed  float32 // radius growth per frame
}

// Spark is a short-lived debris point spawned by an explosion.
type Spark struct {
	Drag float32
}
