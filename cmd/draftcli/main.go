package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ahsrafiq/glass-chat-craft/internal/compose"
	"github.com/ahsrafiq/glass-chat-craft/internal/config"
	"github.com/ahsrafiq/glass-chat-craft/internal/db"
	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
	"github.com/ahsrafiq/glass-chat-craft/internal/email"
	"github.com/ahsrafiq/glass-chat-craft/internal/repository"
	"github.com/ahsrafiq/glass-chat-craft/internal/service"
	"github.com/ahsrafiq/glass-chat-craft/internal/transcript"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	brandRepo := repository.NewPgBrandRepository(pool)
	draftRepo := repository.NewPgDraftRepository(pool)
	revisionRepo := repository.NewPgRevisionRepository(pool)
	feedbackRepo := repository.NewPgFeedbackRepository(pool)

	var composer compose.Composer
	switch {
	case cfg.ComposeFnURL != "":
		composer = compose.NewFunctionClient(cfg.ComposeFnURL)
	case cfg.OpenAIAPIKey != "":
		composer, err = compose.NewOpenAIComposer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			log.Fatal(err)
		}
	default:
		composer = compose.NewTemplateComposer()
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			fmt.Printf("smtp no disponible: %v\n", err)
		} else {
			emailSender = sender
		}
	}

	brandSvc := service.NewBrandService(brandRepo)
	draftSvc := service.NewDraftService(logger, composer, draftRepo, brandRepo, revisionRepo, feedbackRepo, emailSender)

	user, err := ensureUser(ctx, pool, userRepo, "cli@example.com")
	if err != nil {
		log.Fatal(err)
	}

	for {
		fmt.Println("===== Estudio de Campañas =====")
		brands, err := brandRepo.ListByUser(ctx, user.ID)
		if err != nil {
			log.Fatalf("listar marcas: %v", err)
		}
		if len(brands) == 0 {
			fmt.Println("No hay marcas. Crea una nueva.")
			brand, err := createBrandFlow(ctx, reader, brandSvc, user.ID)
			if err != nil {
				log.Fatalf("crear marca: %v", err)
			}
			brands = append(brands, brand)
		}

		fmt.Println("Marcas disponibles:")
		for i, b := range brands {
			fmt.Printf("[%d] %s (ID: %s)\n", i+1, b.Name, b.ID)
		}
		fmt.Println("[C] Crear nueva marca")
		fmt.Print("Selecciona una marca: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)

		var selected domain.Brand
		if strings.EqualFold(choice, "C") {
			brand, err := createBrandFlow(ctx, reader, brandSvc, user.ID)
			if err != nil {
				log.Fatalf("crear marca: %v", err)
			}
			selected = brand
		} else {
			idx, err := strconv.Atoi(choice)
			if err != nil || idx < 1 || idx > len(brands) {
				fmt.Println("Seleccion invalida.")
				continue
			}
			selected = brands[idx-1]
		}

		if err := runBrandMenu(ctx, reader, selected, user, draftSvc); err != nil {
			log.Printf("error en menu: %v", err)
		}
	}
}

func runBrandMenu(
	ctx context.Context,
	reader *bufio.Reader,
	brand domain.Brand,
	user domain.User,
	draftSvc *service.DraftService,
) error {
	for {
		fmt.Printf("\n--- Trabajando con: %s ---\n", strings.ToUpper(brand.Name))
		fmt.Println("[1] Nuevo borrador")
		fmt.Println("[2] Abrir borrador existente")
		fmt.Println("[3] Cambiar marca")
		fmt.Println("[4] Salir")
		fmt.Print("Selecciona una opcion: ")

		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		switch line {
		case "1":
			if err := newDraftFlow(ctx, reader, brand, user, draftSvc); err != nil {
				fmt.Printf("Error creando borrador: %v\n", err)
			}
		case "2":
			if err := openDraftFlow(ctx, reader, brand, user, draftSvc); err != nil {
				fmt.Printf("Error abriendo borrador: %v\n", err)
			}
		case "3":
			return nil
		case "4":
			os.Exit(0)
		default:
			fmt.Println("Opcion invalida.")
		}
	}
}

func newDraftFlow(ctx context.Context, reader *bufio.Reader, brand domain.Brand, user domain.User, draftSvc *service.DraftService) error {
	fmt.Println("Tipos: promotion, newsletter, announcement, welcome, winback")
	fmt.Print("Tipo de campaña: ")
	emailType, _ := reader.ReadString('\n')
	emailType = strings.TrimSpace(emailType)
	if !domain.ValidEmailType(strings.ToLower(emailType)) {
		return fmt.Errorf("tipo de campaña desconocido: %q", emailType)
	}

	fmt.Print("¿Que anuncia este correo?: ")
	request, _ := reader.ReadString('\n')
	request = strings.TrimSpace(request)

	fmt.Print("Audiencia (opcional): ")
	audience, _ := reader.ReadString('\n')
	audience = strings.TrimSpace(audience)

	fmt.Print("Puntos clave separados por coma (opcional): ")
	pointsLine, _ := reader.ReadString('\n')
	var keyPoints []string
	for _, p := range strings.Split(pointsLine, ",") {
		if p = strings.TrimSpace(p); p != "" {
			keyPoints = append(keyPoints, p)
		}
	}

	fmt.Print("Llamado a la accion (opcional): ")
	cta, _ := reader.ReadString('\n')
	cta = strings.TrimSpace(cta)

	fmt.Println("Generando primera version...")
	draft, revision, err := draftSvc.Start(ctx, user.ID, service.StartDraftInput{
		BrandID:      brand.ID,
		EmailType:    emailType,
		Request:      request,
		Audience:     audience,
		KeyPoints:    keyPoints,
		CallToAction: cta,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", revision.Content)
	return reviseLoop(ctx, reader, user, draft.ID, draftSvc)
}

func openDraftFlow(ctx context.Context, reader *bufio.Reader, brand domain.Brand, user domain.User, draftSvc *service.DraftService) error {
	drafts, err := draftSvc.List(ctx, user.ID)
	if err != nil {
		return err
	}
	var own []domain.Draft
	for _, d := range drafts {
		if d.BrandID == brand.ID {
			own = append(own, d)
		}
	}
	if len(own) == 0 {
		fmt.Println("No hay borradores para esta marca.")
		return nil
	}

	fmt.Println("Borradores:")
	for i, d := range own {
		fmt.Printf("[%d] %s | %s | v%d\n", i+1, d.EmailType, firstWords(d.OriginalRequest, 8), d.CurrentVersion)
	}
	fmt.Print("Selecciona un borrador: ")
	choice, _ := reader.ReadString('\n')
	idx, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil || idx < 1 || idx > len(own) {
		fmt.Println("Seleccion invalida.")
		return nil
	}

	return reviseLoop(ctx, reader, user, own[idx-1].ID, draftSvc)
}

func reviseLoop(ctx context.Context, reader *bufio.Reader, user domain.User, draftID string, draftSvc *service.DraftService) error {
	messages, err := draftSvc.LoadTranscript(ctx, user.ID, draftID)
	if err != nil {
		return fmt.Errorf("cargar transcript: %w", err)
	}
	conv := transcript.NewConversation(messages)
	printConversation(conv)

	fmt.Println("---- Modo Revision (texto = feedback, 'ver', 'preview', 'enviar <email>', 'salir') ----")
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("leer input: %w", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			fmt.Println("Saliendo del borrador...")
			return nil
		}
		if strings.EqualFold(text, "ver") {
			printConversation(conv)
			continue
		}
		if strings.EqualFold(text, "preview") {
			subject, html, err := draftSvc.Preview(ctx, user.ID, draftID)
			if err != nil {
				fmt.Printf("error generando preview: %v\n", err)
				continue
			}
			fmt.Printf("Asunto: %s\n\n%s\n", subject, html)
			continue
		}
		if rest, ok := strings.CutPrefix(text, "enviar "); ok {
			if err := draftSvc.SendTest(ctx, user.ID, draftID, strings.TrimSpace(rest)); err != nil {
				fmt.Printf("error enviando copia: %v\n", err)
			} else {
				fmt.Println("Copia de prueba enviada.")
			}
			continue
		}

		fb, revision, err := draftSvc.SubmitFeedback(ctx, user.ID, draftID, text)
		if err != nil {
			if errors.Is(err, service.ErrComposeFailed) {
				// El comentario quedo guardado pero invalido: entra a la
				// conversacion marcado como error y se ofrece borrarlo.
				conv.Append(domain.DisplayMessage{
					Kind:        domain.KindFeedback,
					ID:          "feedback-" + fb.ID,
					Role:        domain.RoleUser,
					Text:        fb.Text,
					IsError:     true,
					FeedbackRef: fb.ID,
				})
				fmt.Println("No se pudo regenerar el correo con ese comentario.")
				fmt.Print("¿Borrar el comentario fallido? [s/N]: ")
				answer, _ := reader.ReadString('\n')
				if strings.EqualFold(strings.TrimSpace(answer), "s") {
					if err := draftSvc.DeleteFeedback(ctx, user.ID, draftID, fb.ID); err != nil {
						fmt.Printf("error borrando comentario: %v\n", err)
					} else if conv.RemoveFeedback(fb.ID) {
						fmt.Println("Comentario borrado.")
					}
				}
				continue
			}
			fmt.Printf("error aplicando feedback: %v\n", err)
			continue
		}

		conv.Append(domain.DisplayMessage{
			Kind:        domain.KindFeedback,
			ID:          "feedback-" + fb.ID,
			Role:        domain.RoleUser,
			Text:        fb.Text,
			FeedbackRef: fb.ID,
		})
		conv.Append(domain.DisplayMessage{
			Kind: domain.KindRevision,
			ID:   fmt.Sprintf("revision-%d", revision.Version),
			Role: domain.RoleAssistant,
			Text: revision.Content,
		})
		fmt.Printf("\n[v%d]\n%s\n", revision.Version, revision.Content)
	}
}

func printConversation(conv *transcript.Conversation) {
	fmt.Println()
	for _, msg := range conv.Messages() {
		label := "Tu"
		if msg.Role == domain.RoleAssistant {
			label = "Redactor"
		}
		if msg.IsError {
			label += " [fallido]"
		}
		fmt.Printf("%s > %s\n", label, firstWords(msg.Text, 40))
	}
	fmt.Println()
}

func firstWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) <= n {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:n], " ") + "..."
}

func createBrandFlow(ctx context.Context, reader *bufio.Reader, brandSvc *service.BrandService, userID string) (domain.Brand, error) {
	fmt.Print("Nombre de la marca: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	fmt.Print("Voz (ej: cercana y directa, formal B2B): ")
	voice, _ := reader.ReadString('\n')
	voice = strings.TrimSpace(voice)
	fmt.Print("Sobre la marca: ")
	about, _ := reader.ReadString('\n')
	about = strings.TrimSpace(about)

	return brandSvc.Create(ctx, userID, name, voice, about)
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, repo repository.UserRepository, emailAddr string) (domain.User, error) {
	const query = `
		SELECT id, email, display_name, created_at
		FROM users
		WHERE email = $1
	`

	var u domain.User
	err := pool.QueryRow(ctx, query, emailAddr).Scan(&u.ID, &u.Email, &u.DisplayName, &u.CreatedAt)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	u = domain.User{
		ID:        uuid.NewString(),
		Email:     emailAddr,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}
