// Package mock provides test doubles for the ai service interfaces.
// Each double supports custom behavior injection via function fields and
// falls back to deterministic defaults, so pipeline tests run without any
// model backend.
package mock
