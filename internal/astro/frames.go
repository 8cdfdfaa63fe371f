package astro

import "math"

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// SphericalToVec3 returns the unit vector for a longitude/latitude pair in degrees.
func SphericalToVec3(lonDeg, latDeg float64) Vec3 {
	lon, lat := degToRad(lonDeg), degToRad(latDeg)
	return Vec3{
		X: math.Cos(lat) * math.Cos(lon),
		Y: math.Cos(lat) * math.Sin(lon),
		Z: math.Sin(lat),
	}
}

// Spherical returns the longitude in [0, 360) and latitude in degrees of a vector.
func (v Vec3) Spherical() (lonDeg, latDeg float64) {
	r := v.Norm()
	if r == 0 {
		return 0, 0
	}
	lonDeg = Normalize360(radToDeg(math.Atan2(v.Y, v.X)))
	latDeg = radToDeg(math.Asin(clampUnit(v.Z / r)))
	return lonDeg, latDeg
}

// EclipticToEquatorial rotates an ecliptic vector about the X axis (toward
// the vernal equinox) by the obliquity, in degrees.
func EclipticToEquatorial(ecl Vec3, obliquityDeg float64) Vec3 {
	cosE := math.Cos(degToRad(obliquityDeg))
	sinE := math.Sin(degToRad(obliquityDeg))

	return Vec3{
		X: ecl.X,
		Y: ecl.Y*cosE - ecl.Z*sinE,
		Z: ecl.Y*sinE + ecl.Z*cosE,
	}
}

// EquatorialToEcliptic is the inverse rotation of EclipticToEquatorial.
func EquatorialToEcliptic(eq Vec3, obliquityDeg float64) Vec3 {
	cosE := math.Cos(degToRad(obliquityDeg))
	sinE := math.Sin(degToRad(obliquityDeg))

	return Vec3{
		X: eq.X,
		Y: eq.Y*cosE + eq.Z*sinE,
		Z: -eq.Y*sinE + eq.Z*cosE,
	}
}
