package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"goidentity/internal/api/user"
	"goidentity/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(userHandler *user.Handler, tokenSvc middleware.TokenService) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	// --- 1. Rotas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Rotas do Módulo de Identidade (v1) ---
	mux.HandleFunc("/v1/register", userHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/login", userHandler.LoginUserHandler)
	mux.HandleFunc("/v1/confirm-email", userHandler.ConfirmEmailHandler)

	// Rotas protegidas: exigem Bearer token válido
	authMw := middleware.NewAuthMiddleware(tokenSvc)
	mux.HandleFunc("/v1/me", authMw(userHandler.MeHandler))

	// --- 3. Documentação Swagger ---
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
