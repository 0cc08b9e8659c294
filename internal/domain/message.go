package domain

// MessageKind discrimina el origen de un DisplayMessage.
type MessageKind string

const (
	KindRequest  MessageKind = "request"
	KindRevision MessageKind = "revision"
	KindFeedback MessageKind = "feedback"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DisplayMessage es una unidad derivada del transcript; nunca se persiste.
// FeedbackRef solo viene en mensajes derivados de feedback y apunta al
// Feedback de origen (necesario para borrarlo desde la vista).
type DisplayMessage struct {
	Kind        MessageKind `json:"kind"`
	ID          string      `json:"id"`
	Role        string      `json:"role"`
	Text        string      `json:"text"`
	IsError     bool        `json:"is_error,omitempty"`
	FeedbackRef string      `json:"feedback_ref,omitempty"`
}
