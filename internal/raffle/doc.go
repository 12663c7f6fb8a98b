// Package raffle implements the filtering-and-selection core of a comment
// giveaway.
//
// Raw records are normalized into [Entry] values, filtered by [Apply] against
// a [RuleConfig], drawn from with a [Selector] and recorded in a [Ledger].
// A [Session] bundles the three pieces of state a giveaway carries between
// commands: the ingested entries, the current eligible set and the ledger.
//
// Nothing in this package does I/O. Importers, exporters, the Graph API
// client and persistence live in sibling packages.
package raffle
