// Package engine builds immutable in-memory indices over the two observation
// datasets (river water levels, station rainfall) and answers the derived
// queries the dashboard shows: per-station level series with acceleration,
// the city-wide aggregated series, and per-station rainfall summaries.
//
// A Handle is built once by Load and never mutated afterwards, so all query
// methods are safe for concurrent use without locking.
package engine
