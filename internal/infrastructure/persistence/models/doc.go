// Package models contains GORM persistence models for the stock ledger, the
// reservation log and products. They are kept apart from the domain types so
// the domain layer carries no ORM tags; each model has ToDomain and a
// ...FromDomain mapper used by the repositories.
package models
