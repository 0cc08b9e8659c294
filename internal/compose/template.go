package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

// TemplateComposer redacta correos por interpolacion pura: un switch sobre el
// tipo de correo elige asunto y apertura, y el resto del brief se intercala
// en un esqueleto fijo. Cero red, cero estado: mismas entradas, mismo texto.
type TemplateComposer struct{}

func NewTemplateComposer() *TemplateComposer {
	return &TemplateComposer{}
}

func (c *TemplateComposer) Compose(_ context.Context, brief domain.CampaignBrief) (string, error) {
	return c.render(brief, renderOptions{}), nil
}

// Revise regenera desde el brief aplicando los ajustes que sugiere el texto
// del feedback. El contenido vigente no se reutiliza: la plantilla siempre
// rearma completo (current queda para composers que si reescriben).
func (c *TemplateComposer) Revise(_ context.Context, brief domain.CampaignBrief, _ string, feedback string) (string, error) {
	return c.render(brief, optionsFromFeedback(feedback)), nil
}

type renderOptions struct {
	shorter   bool
	longer    bool
	formal    bool
	casual    bool
	urgent    bool
	retouched bool
}

// optionsFromFeedback mapea palabras clave del comentario a ajustes de
// plantilla. Si no reconoce nada, marca retouched para que la nueva version
// igual cambie de redaccion.
func optionsFromFeedback(feedback string) renderOptions {
	text := strings.ToLower(feedback)
	var opts renderOptions
	for _, kw := range []string{"short", "corto", "concise", "breve", "less"} {
		if strings.Contains(text, kw) {
			opts.shorter = true
		}
	}
	for _, kw := range []string{"long", "largo", "detail", "detalle", "more"} {
		if strings.Contains(text, kw) {
			opts.longer = true
		}
	}
	for _, kw := range []string{"formal", "profesional", "professional"} {
		if strings.Contains(text, kw) {
			opts.formal = true
		}
	}
	for _, kw := range []string{"casual", "friendly", "cercano", "relajado"} {
		if strings.Contains(text, kw) {
			opts.casual = true
		}
	}
	for _, kw := range []string{"urgen", "urgent", "apuro", "last chance"} {
		if strings.Contains(text, kw) {
			opts.urgent = true
		}
	}
	if opts == (renderOptions{}) {
		opts.retouched = true
	}
	return opts
}

func (c *TemplateComposer) render(brief domain.CampaignBrief, opts renderOptions) string {
	subject, opener := scaffoldFor(brief.EmailType, brief.BrandName)
	if opts.retouched {
		opener = alternateOpener(brief.EmailType)
	}
	if opts.urgent {
		subject = "Last chance: " + subject
	}

	var sb strings.Builder
	sb.WriteString("# " + subject + "\n\n")
	sb.WriteString(greeting(brief, opts) + ",\n\n")
	sb.WriteString(opener)
	if pitch := strings.TrimSpace(brief.Request); pitch != "" {
		sb.WriteString(" " + ensurePeriod(pitch))
	}
	sb.WriteString("\n")

	points := brief.KeyPoints
	if opts.shorter && len(points) > 2 {
		points = points[:2]
	}
	if len(points) > 0 {
		sb.WriteString("\n")
		for _, p := range points {
			sb.WriteString("- " + strings.TrimSpace(p) + "\n")
		}
	}

	if opts.longer && strings.TrimSpace(brief.Audience) != "" {
		sb.WriteString(fmt.Sprintf("\nWe put this together with %s in mind, so every detail above was chosen for you.\n", strings.TrimSpace(brief.Audience)))
	}
	if !opts.shorter && strings.TrimSpace(brief.BrandAbout) != "" {
		sb.WriteString("\n" + ensurePeriod(strings.TrimSpace(brief.BrandAbout)) + "\n")
	}
	if opts.urgent {
		sb.WriteString("\nThis one won't wait around. The clock is already running.\n")
	}

	cta := strings.TrimSpace(brief.CallToAction)
	if cta == "" {
		cta = defaultCTA(brief.EmailType)
	}
	sb.WriteString("\n**" + cta + "**\n")
	sb.WriteString("\n" + signoff(brief, opts) + "\n")

	return sb.String()
}

func scaffoldFor(emailType domain.EmailType, brand string) (subject, opener string) {
	switch emailType {
	case domain.EmailTypePromotion:
		return fmt.Sprintf("A special offer from %s", brand),
			"We put together something we think you'll love."
	case domain.EmailTypeNewsletter:
		return fmt.Sprintf("%s — this month at a glance", brand),
			"Here's a quick roundup of what's been happening."
	case domain.EmailTypeAnnouncement:
		return fmt.Sprintf("Big news from %s", brand),
			"We have an announcement we've been excited to share."
	case domain.EmailTypeWelcome:
		return fmt.Sprintf("Welcome to %s", brand),
			"Thanks for joining us. Here's what to expect."
	case domain.EmailTypeWinback:
		return fmt.Sprintf("We miss you at %s", brand),
			"It's been a while, and a lot has changed since your last visit."
	}
	return fmt.Sprintf("A note from %s", brand), "We wanted to reach out with something worth your inbox."
}

func alternateOpener(emailType domain.EmailType) string {
	switch emailType {
	case domain.EmailTypePromotion:
		return "No filler this time, straight to the good part."
	case domain.EmailTypeNewsletter:
		return "The highlights, minus the noise."
	case domain.EmailTypeAnnouncement:
		return "We'll keep this one short, because the news speaks for itself."
	case domain.EmailTypeWelcome:
		return "You're in. Let's make the first steps easy."
	case domain.EmailTypeWinback:
		return "We kept your seat warm."
	}
	return "Here's a fresh take on what we sent before."
}

func defaultCTA(emailType domain.EmailType) string {
	switch emailType {
	case domain.EmailTypePromotion:
		return "Claim your offer"
	case domain.EmailTypeNewsletter:
		return "Read the full story"
	case domain.EmailTypeAnnouncement:
		return "See what's new"
	case domain.EmailTypeWelcome:
		return "Get started"
	case domain.EmailTypeWinback:
		return "Come take a look"
	}
	return "Learn more"
}

func greeting(brief domain.CampaignBrief, opts renderOptions) string {
	who := strings.TrimSpace(brief.Audience)
	if who == "" {
		who = "there"
	}
	switch {
	case opts.formal || (strings.Contains(strings.ToLower(brief.BrandVoice), "formal") && !opts.casual):
		return "Hello " + who
	case opts.casual:
		return "Hey " + who
	}
	return "Hi " + who
}

func signoff(brief domain.CampaignBrief, opts renderOptions) string {
	if opts.formal {
		return fmt.Sprintf("Warm regards,\nThe %s team", brief.BrandName)
	}
	return fmt.Sprintf("— The %s team", brief.BrandName)
}

func ensurePeriod(s string) string {
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
