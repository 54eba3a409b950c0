// Package models defines the persisted records of the ledger.
//
// # Records
//
//   - Expense: what one person paid and who shares it
//   - Settlement: an obligation between two people in an event, either
//     outstanding (derived, regenerated) or settled (historical)
//
// People, events and groups are owned by other services; records reference
// them by opaque string IDs only.
//
// # Money
//
// Amounts are money.Money (integer cents). Records never hold floats.
package models
