// Package analysis computes oscillation diagnostics from recorded run
// traces, chiefly for spotting control-loop limit cycles.
package analysis

import (
	"math"
	"math/cmplx"
)

func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PowerSpectrum returns one-sided magnitudes for a trace of arbitrary
// length. The trace is truncated to the largest power-of-2 tail and
// mean-removed so the DC bin does not swamp the oscillation content.
func PowerSpectrum(data []float64) []float64 {
	n := largestPow2(len(data))
	if n < 2 {
		return nil
	}
	trimmed := data[len(data)-n:]

	mean := 0.0
	for _, v := range trimmed {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range trimmed {
		centered[i] = v - mean
	}

	fft := FFT(centered)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency returns the strongest oscillation in a trace
// sampled at the given interval [s], with its magnitude. Returns
// zeros for traces too short to analyze.
func DominantFrequency(data []float64, sampleDt float64) (hz, magnitude float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || sampleDt <= 0 {
		return 0, 0
	}

	bin := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[bin] {
			bin = i
		}
	}

	n := largestPow2(len(data))
	return float64(bin) / (float64(n) * sampleDt), ps[bin]
}

func largestPow2(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}
