package stats

import "math"

// Maxwell-Boltzmann reference curves. All functions take kT as the
// product of the Boltzmann constant and temperature in the run's unit
// system, and return 0 for non-physical inputs rather than NaN.

// SpeedPDF evaluates the equilibrium speed density at v.
// f(v) = 4*pi*(m/(2*pi*kT))^1.5 * v^2 * exp(-m*v^2/(2*kT))
func SpeedPDF(v, mass, kT float64) float64 {
	if mass <= 0 || kT <= 0 || v < 0 {
		return 0
	}
	a := mass / (2 * math.Pi * kT)
	return 4 * math.Pi * math.Pow(a, 1.5) * v * v * math.Exp(-mass*v*v/(2*kT))
}

// EnergyPDF evaluates the equilibrium kinetic energy density at en.
// f(E) = 2*(1/kT)^1.5/sqrt(pi) * sqrt(E) * exp(-E/kT)
func EnergyPDF(en, kT float64) float64 {
	if kT <= 0 || en < 0 {
		return 0
	}
	return 2 * math.Pow(1/kT, 1.5) / math.Sqrt(math.Pi) * math.Sqrt(en) * math.Exp(-en/kT)
}

// RMSSpeed returns sqrt(3kT/m).
func RMSSpeed(mass, kT float64) float64 {
	if mass <= 0 || kT <= 0 {
		return 0
	}
	return math.Sqrt(3 * kT / mass)
}

// MeanSpeed returns sqrt(8kT/(pi*m)).
func MeanSpeed(mass, kT float64) float64 {
	if mass <= 0 || kT <= 0 {
		return 0
	}
	return math.Sqrt(8 * kT / (math.Pi * mass))
}

// MostProbableSpeed returns sqrt(2kT/m).
func MostProbableSpeed(mass, kT float64) float64 {
	if mass <= 0 || kT <= 0 {
		return 0
	}
	return math.Sqrt(2 * kT / mass)
}
