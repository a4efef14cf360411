// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and the model list
//   - integration.go: platforms, shops and channels
//   - order.go: orders and cart items
//
// JSON columns are stored as text so the same models run on PostgreSQL (jsonb)
// and on the in-memory SQLite used by tests.
package models
