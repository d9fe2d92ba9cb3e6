package utils

import "math"

// Clamp01 clamps v to the [0,1] range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Round2 rounds v to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TriangularScore maps v to [0,1]: 1.0 inside [optLow,optHigh], falling off
// linearly to 0 at min below the band and at max above it.
func TriangularScore(v, min, optLow, optHigh, max float64) float64 {
	switch {
	case v >= optLow && v <= optHigh:
		return 1.0
	case v <= min || v >= max:
		return 0
	case v < optLow:
		return (v - min) / (optLow - min)
	default:
		return (max - v) / (max - optHigh)
	}
}

// HashString returns a deterministic FNV-1a hash of s. Used to derive stable
// placeholder values from input strings; not cryptographic.
func HashString(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	var h uint64 = offset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
