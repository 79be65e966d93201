package handlers

import "math"

// fleshlightSpeed returns the speed (0.0-1.0) needed to move the given
// distance (0.0-1.0) in durationMS milliseconds. Grounded on
// original_source/buttplug/src/util/fleshlight_helper.rs (itself a port of
// funjack/launchcontrol's funscript speed curve).
func fleshlightSpeed(distance float64, durationMS uint32) float64 {
	d := distance
	if d <= 0 {
		return 0
	}
	if d > 1 {
		d = 1
	}
	return 250.0 * math.Pow(float64(durationMS)*90.0/(d*100.0), -1.05)
}

// fleshlightDistance is the inverse of fleshlightSpeed: given a duration and
// a speed, the distance that speed achieves in that time.
func fleshlightDistance(durationMS uint32, speed float64) float64 {
	s := speed
	if s <= 0 {
		return 0
	}
	if s > 1 {
		s = 1
	}
	mil := math.Pow(s/250.0, -0.95)
	diff := mil - float64(durationMS)
	if math.Abs(diff) < 0.001 {
		return 0
	}
	v := (90.0 - (diff / mil * 90.0)) / 100.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// fleshlightDuration is the time it takes to move distance at speed.
func fleshlightDuration(distance, speed float64) uint32 {
	d, s := distance, speed
	if d <= 0 || s <= 0 {
		return 0
	}
	if d > 1 {
		d = 1
	}
	if s > 1 {
		s = 1
	}
	mil := math.Pow(s/250.0, -0.95)
	return uint32(mil / (90.0 / (d * 100.0)))
}
