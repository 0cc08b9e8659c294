package domain

import "time"

// EmailType es el conjunto cerrado de tipos de campaña que sabe redactar el composer.
type EmailType string

const (
	EmailTypePromotion    EmailType = "promotion"
	EmailTypeNewsletter   EmailType = "newsletter"
	EmailTypeAnnouncement EmailType = "announcement"
	EmailTypeWelcome      EmailType = "welcome"
	EmailTypeWinback      EmailType = "winback"
)

// ValidEmailType reporta si value pertenece al conjunto cerrado.
func ValidEmailType(value string) bool {
	switch EmailType(value) {
	case EmailTypePromotion, EmailTypeNewsletter, EmailTypeAnnouncement, EmailTypeWelcome, EmailTypeWinback:
		return true
	}
	return false
}

// Draft es una conversacion de redaccion: un pedido original y sus versiones.
// Guarda los parametros de campaña con los que se genero para que una
// regeneracion use exactamente el mismo brief. current_version arranca en 1
// y sube de a 1 con cada revision aceptada; ningun otro campo muta despues
// de creado.
type Draft struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	BrandID         string    `json:"brand_id"`
	EmailType       EmailType `json:"email_type"`
	OriginalRequest string    `json:"original_request"`
	Audience        string    `json:"audience,omitempty"`
	KeyPoints       []string  `json:"key_points,omitempty"`
	CallToAction    string    `json:"call_to_action,omitempty"`
	CurrentVersion  int       `json:"current_version"`
	CreatedAt       time.Time `json:"created_at"`
}
