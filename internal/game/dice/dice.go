// Package dice provides the randomness abstraction used for placement and
// respawn decisions in the simulation.
package dice

// Source is the randomness provider for the simulation.
//
// Implementations returned by NewCryptoSource are safe for concurrent use;
// seeded sources are not and belong to a single goroutine.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
