// internal/models/worker.go
package models

import "time"

// Worker represents a registered construction worker.
type Worker struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Phone        string    `json:"phone" db:"phone"`
	Skill        string    `json:"skill" db:"skill"`
	Location     string    `json:"location" db:"location"`
	IsAvailable  bool      `json:"isAvailable" db:"is_available"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
}

// InsertWorker carries the fields accepted when creating a worker.
type InsertWorker struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Skill       string `json:"skill"`
	Location    string `json:"location"`
	IsAvailable bool   `json:"isAvailable"`
}
