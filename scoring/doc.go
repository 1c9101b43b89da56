// Package scoring implements the pairwise compatibility metric.
//
// Scores are variance-weighted: every shared answered question contributes
// plus or minus its Bernoulli variance depending on whether the pair
// satisfies the agreement test of the caller-supplied scheme, and the sum is
// normalized by the number of shared questions. Controversial questions
// (population mean near 0.5) therefore dominate, near-unanimous ones barely
// register.
package scoring
