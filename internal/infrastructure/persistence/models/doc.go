// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities so the domain layer carries no
// ORM tags.
//
// Structure:
// - base.go: BaseModel shared by every table
// - printing.go: print job history
package models
