package transcript

import (
	"fmt"
	"sort"
	"time"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

// Build arma el transcript lineal de un draft: el pedido original, cada
// revision en orden de version, y cada feedback colgado de la revision a la
// que critica. Funcion pura: no toca reloj ni estado, mismas entradas
// producen exactamente la misma salida.
//
// El feedback se asigna por ventana de atribucion: el intervalo abierto entre
// el created_at de una revision y el de la siguiente (la ultima ventana queda
// abierta hacia el futuro). Un feedback cuyo timestamp cae exacto sobre un
// borde queda fuera de ambas ventanas.
func Build(originalRequest string, revisions []domain.Revision, feedback []domain.Feedback) []domain.DisplayMessage {
	messages := make([]domain.DisplayMessage, 0, 1+len(revisions)+len(feedback))

	messages = append(messages, domain.DisplayMessage{
		Kind: domain.KindRequest,
		ID:   "request",
		Role: domain.RoleUser,
		Text: originalRequest,
	})

	// Orden ascendente por timestamp, estable ante empates. Copia para no
	// mutar el slice del caller.
	ordered := append([]domain.Feedback(nil), feedback...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for i, rev := range revisions {
		messages = append(messages, domain.DisplayMessage{
			Kind: domain.KindRevision,
			ID:   fmt.Sprintf("revision-%d", rev.Version),
			Role: domain.RoleAssistant,
			Text: rev.Content,
		})

		open := rev.CreatedAt
		var closeAt *time.Time
		if i+1 < len(revisions) {
			next := revisions[i+1].CreatedAt
			closeAt = &next
		}

		for _, fb := range ordered {
			if !fb.CreatedAt.After(open) {
				continue
			}
			if closeAt != nil && !fb.CreatedAt.Before(*closeAt) {
				continue
			}
			messages = append(messages, domain.DisplayMessage{
				Kind:        domain.KindFeedback,
				ID:          "feedback-" + fb.ID,
				Role:        domain.RoleUser,
				Text:        fb.Text,
				IsError:     !fb.Valid,
				FeedbackRef: fb.ID,
			})
		}
	}

	return messages
}
