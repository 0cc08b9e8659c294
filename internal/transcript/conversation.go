package transcript

import "github.com/ahsrafiq/glass-chat-craft/internal/domain"

// Conversation es la lista viva de mensajes que consume la vista: se siembra
// con la salida de Build y despues recibe mutaciones optimistas (append al
// enviar, remove al borrar feedback). La muta un solo goroutine.
type Conversation struct {
	messages []domain.DisplayMessage
}

func NewConversation(messages []domain.DisplayMessage) *Conversation {
	return &Conversation{
		messages: append([]domain.DisplayMessage(nil), messages...),
	}
}

// Append agrega un mensaje al final conservando el orden de insercion.
func (c *Conversation) Append(msg domain.DisplayMessage) {
	c.messages = append(c.messages, msg)
}

// RemoveFeedback saca exactamente el mensaje cuyo FeedbackRef coincide y
// ningun otro. Devuelve false si no habia mensaje con esa referencia.
func (c *Conversation) RemoveFeedback(feedbackID string) bool {
	if feedbackID == "" {
		return false
	}
	for i, msg := range c.messages {
		if msg.FeedbackRef != feedbackID {
			continue
		}
		c.messages = append(c.messages[:i], c.messages[i+1:]...)
		return true
	}
	return false
}

// Messages devuelve una copia de la lista en su orden actual.
func (c *Conversation) Messages() []domain.DisplayMessage {
	return append([]domain.DisplayMessage(nil), c.messages...)
}

func (c *Conversation) Len() int {
	return len(c.messages)
}
