package models

import "time"

// Location is a shooting location, used by the optimizer only for grouping
// and move-penalty computation.
type Location struct {
	ID           string    `db:"id" json:"id"`
	ProductionID string    `db:"production_id" json:"productionId"`
	Name         string    `db:"name" json:"name"`
	Address      string    `db:"address" json:"address"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
