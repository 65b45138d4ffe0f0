// Package fit runs the training loop of a pairing model.
//
// Each epoch evaluates the model in hard mode (the loss and permutations are
// recorded), then evaluates it in soft mode and takes a gradient step on the
// engine's score matrices. Gradients are central finite differences of the
// soft loss. A final hard evaluation follows the last step, so a run of E
// epochs records E+1 hard losses and E soft losses.
//
// Runs are tagged with a UUID, logged through log/slog when a logger is set
// and exported as Prometheus metrics on the default registry.
package fit
