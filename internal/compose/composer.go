package compose

import (
	"context"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

// Composer produce el texto de un correo a partir del brief estructurado.
// Compose arma la primera version; Revise rehace el contenido tomando en
// cuenta el feedback del usuario sobre la version vigente.
type Composer interface {
	Compose(ctx context.Context, brief domain.CampaignBrief) (string, error)
	Revise(ctx context.Context, brief domain.CampaignBrief, current, feedback string) (string, error)
}

// MockComposer permite tests sin composer real.
type MockComposer struct {
	Content      string
	Err          error
	LastBrief    domain.CampaignBrief
	LastCurrent  string
	LastFeedback string
	Calls        int
}

func (m *MockComposer) Compose(_ context.Context, brief domain.CampaignBrief) (string, error) {
	m.Calls++
	m.LastBrief = brief
	return m.Content, m.Err
}

func (m *MockComposer) Revise(_ context.Context, brief domain.CampaignBrief, current, feedback string) (string, error) {
	m.Calls++
	m.LastBrief = brief
	m.LastCurrent = current
	m.LastFeedback = feedback
	return m.Content, m.Err
}
