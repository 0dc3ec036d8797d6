// Package viz renders simulation results for the terminal.
//
//   - [RenderSummary]: outcome counts and depth moments in a panel
//   - [DepthPlot]: depth histogram as an ASCII line chart
//   - [TimingPlot]: benchmark seconds per strategy against ion count
//
// Styles are plain lipgloss styles shared with the live view.
package viz
