// Package reactor describes transport models as immutable values: materials,
// surfaces and regions, cells, the root universe, run settings and tallies.
// A Builder maps one scalar parameter, such as boron concentration in ppm, to
// a complete Model that an engine can run.
package reactor
