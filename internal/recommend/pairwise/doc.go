// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

// Package pairwise computes similarity matrices between two sets of
// preference vectors.
//
// Every function compares each row of x with each row of y and returns a
// matrix of shape (rows(x), rows(y)):
//
//   - EuclideanSimilarity: 1/(1+d), plain distance d, or squared distance
//   - PearsonCorrelation: linear correlation of mean-centered rows, [-1, 1]
//   - CosineSimilarity: cosine of the angle between raw rows, [-1, 1]
//   - LogLikelihoodCoefficient: co-occurrence surprise of item sets, [0, 1]
//
// A NaN entry means the score is undefined for that pair (for example a
// zero-variance row under Pearson). Callers filter NaN themselves; it is
// never reported as an error.
//
// All functions are pure: identical inputs give bit-identical output.
package pairwise
