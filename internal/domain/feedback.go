package domain

import "time"

// Feedback es un comentario del usuario sobre un draft. Valid=false marca
// un comentario que no llego a producir revision (se muestra con opcion de borrado).
type Feedback struct {
	ID        string    `json:"id"`
	DraftID   string    `json:"draft_id"`
	Text      string    `json:"text"`
	Valid     bool      `json:"is_valid"`
	CreatedAt time.Time `json:"created_at"`
}
