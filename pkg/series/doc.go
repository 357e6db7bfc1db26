/*
Package series implements the numerical operations the catalog
dispatches: time-bounds setters, calendar aggregations (annual,
seasonal, monthly and their climatology/departure transforms), and the
statistical operations.

All functions operate on domain.Variable values and return new
variables; inputs are never mutated except by the explicit bounds
setters. Missing samples are represented as NaN and skipped by moment
statistics.
*/
package series
