// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: AggregateModel and OwnedAggregateModel (id, timestamps, version, owner)
// - identity.go: farmers
// - ledger.go: accounts, categories, transactions, budgets, crop finances, goals
package models
