package domain

import "time"

// Revision es una foto inmutable del contenido generado para un draft.
// Los numeros de version son contiguos desde 1 y crecen junto con created_at.
type Revision struct {
	ID        string    `json:"id"`
	DraftID   string    `json:"draft_id"`
	Version   int       `json:"version"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
