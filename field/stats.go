package field

import "math"

// Stats summarizes the field for telemetry and the HUD.
type Stats struct {
	Frame          uint64
	MeanSpeed      float64
	MaxSpeed       float64
	MeanTargetDist float64
	MeanHomeDist   float64
	MeanColor      float64 // average channel value
	Charge         float64 // charge passed on the last step
	Explosions     uint64  // explode events seen so far
}

// Stats scans the buffers once.
func (f *Field) Stats() Stats {
	s := Stats{
		Frame:      f.frame,
		Charge:     f.lastCharge,
		Explosions: f.explosions,
	}
	if f.count == 0 {
		return s
	}

	var speed, target, home, color float64
	for i := 0; i < f.count; i++ {
		i3 := i * 3
		v := norm(f.vel[i3], f.vel[i3+1], f.vel[i3+2])
		speed += v
		if v > s.MaxSpeed {
			s.MaxSpeed = v
		}
		target += dist3(f.pos, f.target, i3)
		home += dist3(f.pos, f.home, i3)
		color += float64(f.col[i3]+f.col[i3+1]+f.col[i3+2]) / 3
	}

	n := float64(f.count)
	s.MeanSpeed = speed / n
	s.MeanTargetDist = target / n
	s.MeanHomeDist = home / n
	s.MeanColor = color / n
	return s
}

// MeanDistanceTo returns the mean distance from each particle to point p,
// measured in the field's local frame.
func (f *Field) MeanDistanceTo(x, y, z float32) float64 {
	if f.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < f.count; i++ {
		i3 := i * 3
		sum += norm(f.pos[i3]-x, f.pos[i3+1]-y, f.pos[i3+2]-z)
	}
	return sum / float64(f.count)
}

func dist3(a, b []float32, i3 int) float64 {
	return norm(a[i3]-b[i3], a[i3+1]-b[i3+1], a[i3+2]-b[i3+2])
}

func norm(x, y, z float32) float64 {
	return math.Sqrt(float64(x*x + y*y + z*z))
}
