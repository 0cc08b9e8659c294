package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ahsrafiq/glass-chat-craft/internal/compose"
	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

type Scenario struct {
	Name     string
	Brief    domain.CampaignBrief
	Feedback string
}

// Chequeo de humo del composer configurado: compone y revisa un set fijo de
// briefs y valida que la salida cumpla el contrato que asume el resto de la
// app (markdown con asunto en heading, marca mencionada, revision distinta).
// Termina con exit code 1 si algun chequeo falla, para poder correrlo antes
// de un deploy contra una API key o funcion de composicion nueva.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	var (
		composer compose.Composer
		err      error
	)
	switch {
	case os.Getenv("COMPOSE_FN_URL") != "":
		composer = compose.NewFunctionClient(os.Getenv("COMPOSE_FN_URL"))
		fmt.Println("Composer: funcion HTTP", os.Getenv("COMPOSE_FN_URL"))
	case os.Getenv("OPENAI_API_KEY") != "":
		composer, err = compose.NewOpenAIComposer(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_MODEL"))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("Composer: openai")
	default:
		composer = compose.NewTemplateComposer()
		fmt.Println("Composer: plantillas locales")
	}

	scenarios := []Scenario{
		{
			Name: "Promocion con puntos clave",
			Brief: domain.CampaignBrief{
				BrandName:    "Glasspoint",
				BrandVoice:   "cercana y directa",
				EmailType:    domain.EmailTypePromotion,
				Request:      "anuncia el 20% de descuento de agosto",
				Audience:     "clientes actuales",
				KeyPoints:    []string{"20% off en toda la tienda", "solo hasta el domingo"},
				CallToAction: "Compra ahora",
			},
			Feedback: "hazlo mas corto",
		},
		{
			Name: "Newsletter sin CTA explicito",
			Brief: domain.CampaignBrief{
				BrandName: "Northwind",
				EmailType: domain.EmailTypeNewsletter,
				Request:   "resumen de novedades del mes",
			},
			Feedback: "dale un tono mas formal",
		},
		{
			Name: "Winback urgente",
			Brief: domain.CampaignBrief{
				BrandName: "Glasspoint",
				EmailType: domain.EmailTypeWinback,
				Request:   "recupera clientes inactivos con un cupon",
				Audience:  "clientes sin compras en 6 meses",
			},
			Feedback: "que suene mas urgente",
		},
	}

	var failures int
	for _, sc := range scenarios {
		fmt.Printf("%s[%s]%s\n", colorCyan, sc.Name, colorReset)

		content, err := composer.Compose(ctx, sc.Brief)
		if err != nil {
			failures += report("compose", fmt.Errorf("compose: %w", err))
			fmt.Println()
			continue
		}

		failures += check("asunto en heading", strings.HasPrefix(content, "# "))
		failures += check("menciona la marca", strings.Contains(content, sc.Brief.BrandName))
		subject := compose.ExtractSubject(content)
		failures += check("asunto extraible", subject != "")
		_, err = compose.RenderHTML(content)
		failures += report("render html", err)

		revised, err := composer.Revise(ctx, sc.Brief, content, sc.Feedback)
		if err != nil {
			failures += report("revise", fmt.Errorf("revise: %w", err))
			fmt.Println()
			continue
		}
		failures += check("revision no vacia", revised != "")
		failures += check("revision distinta", revised != content)

		fmt.Printf("Asunto: %q\n\n", subject)
	}

	if failures > 0 {
		fmt.Printf("%s%d chequeos fallidos%s\n", colorRed, failures, colorReset)
		os.Exit(1)
	}
	fmt.Printf("%sTodos los chequeos pasaron%s\n", colorGreen, colorReset)
}

func check(name string, ok bool) int {
	if ok {
		fmt.Printf("  %sOK%s  %s\n", colorGreen, colorReset, name)
		return 0
	}
	fmt.Printf("  %sFAIL%s %s\n", colorRed, colorReset, name)
	return 1
}

func report(name string, err error) int {
	if err == nil {
		fmt.Printf("  %sOK%s  %s\n", colorGreen, colorReset, name)
		return 0
	}
	fmt.Printf("  %sFAIL%s %s: %v\n", colorRed, colorReset, name, err)
	return 1
}
