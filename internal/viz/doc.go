// Package viz renders run results in the terminal.
//
// Plots are drawn with asciigraph; text blocks are styled with lipgloss and
// degrade to plain text when the output is not a terminal.
package viz
