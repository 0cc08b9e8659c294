package domain

import "time"

// Brand guarda la identidad de marca que alimenta la redaccion de campañas.
type Brand struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Voice     string    `json:"voice,omitempty"` // Ej: "cercana y directa", "formal B2B"
	About     string    `json:"about,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
