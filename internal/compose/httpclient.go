package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ahsrafiq/glass-chat-craft/internal/domain"
)

// FunctionClient delega la redaccion en un servicio externo de composicion
// via HTTP. Expone dos rutas: POST /compose para la primera version y
// POST /revise para regenerar con feedback.
type FunctionClient struct {
	baseURL string
	client  *http.Client
}

// NewFunctionClient construye el cliente apuntando a la URL base del servicio.
func NewFunctionClient(baseURL string) *FunctionClient {
	return &FunctionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// FunctionRequest es el payload que viaja hacia el servicio de composicion.
// Current y Feedback solo van en /revise.
type FunctionRequest struct {
	Brief    domain.CampaignBrief `json:"brief"`
	Current  string               `json:"current,omitempty"`
	Feedback string               `json:"feedback,omitempty"`
}

// FunctionResponse es la respuesta del servicio de composicion.
type FunctionResponse struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

func (c *FunctionClient) Compose(ctx context.Context, brief domain.CampaignBrief) (string, error) {
	return c.post(ctx, "/compose", FunctionRequest{Brief: brief})
}

func (c *FunctionClient) Revise(ctx context.Context, brief domain.CampaignBrief, current, feedback string) (string, error) {
	return c.post(ctx, "/revise", FunctionRequest{Brief: brief, Current: current, Feedback: feedback})
}

func (c *FunctionClient) post(ctx context.Context, path string, payload FunctionRequest) (string, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("compose function error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var cr FunctionResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if cr.Error != "" {
		return "", fmt.Errorf("compose function error: %s", cr.Error)
	}
	if cr.Content == "" {
		return "", fmt.Errorf("compose function empty response")
	}

	return cr.Content, nil
}
