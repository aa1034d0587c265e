package solar

import "math"

const degToRad = math.Pi / 180

// Declination returns the solar declination in degrees for a day of year,
// using the standard cosine approximation. 365 is treated as a constant;
// leap years need no special casing at this accuracy.
func Declination(dayOfYear int) float64 {
	day := normalizeDay(dayOfYear)
	return -23.45 * math.Cos(2*math.Pi/365*float64(day+10))
}

// HourAngle returns the solar hour angle in degrees for a fractional hour
// of day. Noon is 0, mornings negative, afternoons positive, 15°/hour.
func HourAngle(hourOfDay float64) float64 {
	return (normalizeHour(hourOfDay) - 12) * 15
}

// Elevation returns the solar elevation angle in degrees for a latitude,
// fractional hour of day and day of year. The asin argument is clamped to
// [-1,1] so floating error at the extremes of the input range cannot
// produce a domain error.
func Elevation(latitudeDeg, hourOfDay float64, dayOfYear int) float64 {
	lat := latitudeDeg * degToRad
	dec := Declination(dayOfYear) * degToRad
	ha := HourAngle(hourOfDay) * degToRad

	sinElev := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(ha)
	return math.Asin(clamp(sinElev, -1, 1)) / degToRad
}

// Vector is a direction in the panel coordinate frame: +Y up, +Z the
// equator-facing horizontal, +X west of that. Azimuth 180° = equator-facing,
// 0° = pole-facing, matching the convention used throughout the service.
type Vector struct {
	X, Y, Z float64
}

// PanelNormal returns the outward unit normal of a panel at the given tilt
// and azimuth. Tilt is clamped to [0,90], azimuth wrapped modulo 360.
func PanelNormal(tiltDeg, azimuthDeg float64) Vector {
	t := clamp(tiltDeg, 0, 90) * degToRad
	a := normalizeAzimuth(azimuthDeg) * degToRad
	return Vector{
		X: math.Sin(t) * math.Sin(a),
		Y: math.Cos(t),
		Z: -math.Sin(t) * math.Cos(a),
	}
}

// LightVector returns the unit vector pointing toward a light source at the
// given azimuth and elevation, in the same frame as PanelNormal.
func LightVector(azimuthDeg, elevationDeg float64) Vector {
	a := normalizeAzimuth(azimuthDeg) * degToRad
	e := clamp(elevationDeg, -90, 90) * degToRad
	return Vector{
		X: math.Cos(e) * math.Sin(a),
		Y: math.Sin(e),
		Z: -math.Cos(e) * math.Cos(a),
	}
}

// Dot returns the dot product of two vectors.
func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// IncidentAngle returns the angle in degrees between the panel normal and
// the direction toward the light source. 0° means the sun is perpendicular
// to the panel face.
func IncidentAngle(tiltDeg, azimuthDeg, lightAzimuthDeg, lightElevationDeg float64) float64 {
	n := PanelNormal(tiltDeg, azimuthDeg)
	l := LightVector(lightAzimuthDeg, lightElevationDeg)
	return math.Acos(clamp(n.Dot(l), -1, 1)) / degToRad
}

// GeometricEfficiency returns the cosine-projection capture efficiency of a
// panel as a percentage, zero when the light comes from behind the panel.
func GeometricEfficiency(tiltDeg, azimuthDeg, lightAzimuthDeg, lightElevationDeg float64) float64 {
	n := PanelNormal(tiltDeg, azimuthDeg)
	l := LightVector(lightAzimuthDeg, lightElevationDeg)
	return math.Max(0, n.Dot(l)) * 100
}

// EffectiveIrradiance projects GHI onto a tilted surface using the angular
// difference between tilt and solar elevation, floored at zero. A sun at or
// below the horizon contributes nothing regardless of tilt.
func EffectiveIrradiance(ghiWm2, tiltDeg, solarElevationDeg float64) float64 {
	if solarElevationDeg <= 0 || ghiWm2 <= 0 {
		return 0
	}
	angleDiff := math.Abs(clamp(tiltDeg, 0, 90)-solarElevationDeg) * degToRad
	return math.Max(0, ghiWm2*math.Cos(angleDiff))
}

func normalizeAzimuth(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}

func normalizeHour(h float64) float64 {
	m := math.Mod(h, 24)
	if m < 0 {
		m += 24
	}
	return m
}

func normalizeDay(d int) int {
	if d < 1 {
		return 1
	}
	if d > 366 {
		return 366
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
