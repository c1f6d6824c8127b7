// Package folio computes the performance of a brokerage account and the
// valuation ratios of securities.
//
// The core functionalities include:
//   - Transaction Normalization: turning raw broker statement rows, with
//     their locale formatted numbers, French or English labels and broker
//     symbols, into dated deposits, withdrawals, trades, transfers and
//     dividends.
//   - Daily Simulation: replaying the transactions one calendar day at a
//     time with the market closes to rebuild cash, positions and net asset
//     value in the reporting currency.
//   - Time-Weighted Return: chaining the daily returns so that deposits,
//     withdrawals and transfers do not count as performance.
//   - Valuation Ratios: P/E, P/FCF and P/S series aligned on daily closes,
//     using the fundamentals published at each date.
//   - Fair Value: projecting a per-share metric and discounting it at a
//     target return.
//
// Market data comes from the yahoo and eodhd packages through a Fetcher.
// This package serves as the foundational logic for the `pfa` command-line
// tool and its HTTP server.
package folio
