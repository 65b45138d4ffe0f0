// Package config loads and validates a diffpass run configuration.
//
// A run is described by a YAML document decoded over Default(). Field rules
// are expressed as go-playground/validator struct tags; cross-field rules
// (fixed pairings per group, exponent for the distance kernel) are checked
// by Validate. MSAModel and GraphModel turn a valid Config into a pairing
// model; PermutationOptions, SimilarityOperator and FitOptions expose the
// individual sections.
package config
