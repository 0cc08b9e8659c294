package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ahsrafiq/glass-chat-craft/internal/compose"
)

// Servicio de composicion standalone: expone el mismo contrato que consume
// compose.FunctionClient (POST /compose y POST /revise) para poder correr el
// composer como proceso separado del API, con la API key fuera de este.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var composer compose.Composer = compose.NewTemplateComposer()
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c, err := compose.NewOpenAIComposer(key, os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_MODEL"))
		if err != nil {
			logger.Fatal("openai composer init failed", zap.Error(err))
		}
		composer = c
		logger.Info("compose function using openai composer")
	} else {
		logger.Info("compose function using template composer")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/compose", handleCompose(logger, composer, false))
	mux.HandleFunc("/revise", handleCompose(logger, composer, true))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	port := os.Getenv("COMPOSE_FN_PORT")
	if port == "" {
		port = "9090"
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting compose function", zap.String("port", port))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func handleCompose(logger *zap.Logger, composer compose.Composer, revise bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req compose.FunctionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, compose.FunctionResponse{Error: "invalid request body"})
			return
		}

		var (
			content string
			err     error
		)
		if revise {
			content, err = composer.Revise(r.Context(), req.Brief, req.Current, req.Feedback)
		} else {
			content, err = composer.Compose(r.Context(), req.Brief)
		}
		if err != nil {
			logger.Warn("compose failed", zap.Bool("revise", revise), zap.Error(err))
			writeJSON(w, http.StatusBadGateway, compose.FunctionResponse{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, compose.FunctionResponse{Content: content})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
