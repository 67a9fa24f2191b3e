// Package dca simulates periodic ("dollar-cost-averaging") investment into a
// multi-instrument portfolio over a historical date range.
//
// The simulation keeps a single mutable State (cash, integer shares, cumulative
// contributions, investment and fees) and folds it over a calendar of trading
// days, that is days on which every instrument has a price:
//   - Bootstrapping: the initial contribution is split across all instruments
//     according to their target weights, in ascending weight order.
//   - Recurring: every month a contribution is added to cash, once a year a
//     connection fee is charged, and every trade interval a round of purchases
//     is executed. At the start of each rotation round a Solver computes the
//     share deltas that would bring the portfolio weights back to their targets
//     within the available budget, and purchases consume them one instrument
//     at a time.
//   - Finalized: a closing sample is recorded and summary statistics computed.
//
// Every attempted purchase, including those that end up buying nothing, records
// a Sample of the portfolio (equity, invested amount, remaining cash, return,
// fee ratio and weights), producing the time series a visualization consumes.
//
// Price data is supplied by the caller as sparse per-instrument series (see
// package date); the JSONL Market codec and package eodhd are convenient
// sources. Package renderer, chart and store consume a Result.
package dca
