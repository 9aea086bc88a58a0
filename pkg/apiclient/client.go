// Package apiclient é o adaptador de requisição do lado do cliente (SPA):
// serializa o formulário de registro e o repassa ao backend sem validar,
// repetir ou interpretar a resposta.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// RegisterModel é o modelo de registro enviado pelo frontend.
type RegisterModel struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Client envia requisições de conta ao backend configurado.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New cria um Client apontando para a URL base do backend.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: http.DefaultClient,
	}
}

// Register envia o modelo de registro via POST e devolve a resposta crua,
// sem resolver o corpo. Interpretar sucesso ou erro é responsabilidade do
// chamador.
func (c *Client) Register(ctx context.Context, model RegisterModel) (*http.Response, error) {
	body, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("falha ao serializar o modelo de registro: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/register", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("falha ao montar a requisição de registro: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.HTTPClient.Do(req)
}
