package imu

import "math"

// The low-pass stage is a 4th-order Butterworth realised as two
// cascaded biquad sections in Direct-Form II transposed, applied
// forward and backward so the net phase shift cancels. The
// forward-backward initial-state handling follows Gustafsson,
// "Determining the initial states in forward-backward filtering",
// IEEE Trans. Signal Processing 44(4), 1996.

// biquad is a single second-order IIR section with a0 normalised to 1.
type biquad struct {
	b [3]float64
	a [3]float64 // a[0] == 1
	w [2]float64 // DF2T delay state
}

// step feeds one sample through the section, updating internal state.
func (f *biquad) step(x float64) float64 {
	y := f.w[0] + f.b[0]*x
	f.w[0] = f.w[1] - f.a[1]*y + f.b[1]*x
	f.w[1] = f.b[2]*x - f.a[2]*y
	return y
}

// edgePad is the number of reflected samples prepended and appended
// before the forward-backward passes (3x section order).
const edgePad = 6

// zeroPhase filters the signal forward then backward through the
// section. Signals of edgePad samples or fewer are returned unchanged:
// the edge reflection needs more history than they contain.
func (f *biquad) zeroPhase(signal []float64) []float64 {
	if len(signal) <= edgePad {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out
	}

	// Initial state matched to the signal's DC level so the filter
	// does not ring at the boundaries.
	kdc := (f.b[0] + f.b[1] + f.b[2]) / (1 + f.a[1] + f.a[2])
	var si [2]float64
	si[1] = f.b[2] - kdc*f.a[2]
	si[0] = si[1] + f.b[1] - kdc*f.a[1]

	v := make([]float64, 0, len(signal)+2*edgePad)

	// Forward pass over the reflected head, the signal, and the
	// reflected tail.
	first, last := signal[0], signal[len(signal)-1]
	f.w = [2]float64{si[0] * (2*first - signal[edgePad]), si[1] * (2*first - signal[edgePad])}
	for i := edgePad; i >= 1; i-- {
		v = append(v, f.step(2*first-signal[i]))
	}
	for _, x := range signal {
		v = append(v, f.step(x))
	}
	for i := 1; i <= edgePad; i++ {
		v = append(v, f.step(2*last-signal[len(signal)-1-i]))
	}

	// Backward pass in place.
	f.w = [2]float64{si[0] * v[len(v)-1], si[1] * v[len(v)-1]}
	for i := len(v) - 1; i >= 0; i-- {
		v[i] = f.step(v[i])
	}

	return v[edgePad : len(signal)+edgePad]
}

// butterworthSections designs the two biquad sections of a 4th-order
// Butterworth low-pass via the bilinear transform. cutoffHz is the
// -3 dB frequency; dt is the sampling interval in seconds. The
// normalised cutoff is clamped strictly inside (0, 1) of Nyquist so
// the design stays finite for any positive dt.
func butterworthSections(cutoffHz, dt float64) [2]biquad {
	nyquist := 0.5 / dt
	wn := cutoffHz / nyquist
	if wn < 1e-4 {
		wn = 1e-4
	}
	if wn > 0.9999 {
		wn = 0.9999
	}
	k := math.Tan(math.Pi * wn / 2)

	// Section quality factors for a 4th-order Butterworth:
	// Q_k = 1 / (2 cos((2k+1)π/8)).
	var sections [2]biquad
	for i := range sections {
		q := 1 / (2 * math.Cos(float64(2*i+1)*math.Pi/8))
		norm := 1 / (1 + k/q + k*k)
		b0 := k * k * norm
		sections[i] = biquad{
			b: [3]float64{b0, 2 * b0, b0},
			a: [3]float64{1, 2 * (k*k - 1) * norm, (1 - k/q + k*k) * norm},
		}
	}
	return sections
}

// ZeroPhaseLowPass applies a 4th-order Butterworth low-pass to the
// signal forward and backward, returning a new slice of the same
// length with no net phase shift.
func ZeroPhaseLowPass(signal []float64, cutoffHz, dt float64) []float64 {
	sections := butterworthSections(cutoffHz, dt)
	out := sections[0].zeroPhase(signal)
	return sections[1].zeroPhase(out)
}

// lowPassSeries filters each axis of a vector series independently.
func lowPassSeries(series []Vec3, cutoffHz, dt float64) []Vec3 {
	return fromAxes(
		ZeroPhaseLowPass(axis(series, 0), cutoffHz, dt),
		ZeroPhaseLowPass(axis(series, 1), cutoffHz, dt),
		ZeroPhaseLowPass(axis(series, 2), cutoffHz, dt),
	)
}
