// Package export renders ensemble summaries and trajectories to image files
// (SVG, PNG, PDF, EPS, JPEG, TIFF) with gonum/plot.
package export
