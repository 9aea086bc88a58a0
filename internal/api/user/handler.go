package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"goidentity/internal/domain"
	apperror "goidentity/internal/errors"
	"goidentity/internal/pkg/logger"
	"goidentity/internal/pkg/middleware"
)

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ConfirmEmailRequest representa o payload de entrada para a confirmação de e-mail.
type ConfirmEmailRequest struct {
	Token string `json:"token"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service domain.UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc domain.UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas
// ao cliente. Erros de validação carregam o detalhe por campo no corpo.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err == nil {
		w.WriteHeader(successStatus)

		h.Logger.Info("Requisição concluída com sucesso.", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta.", jsonErr)
			}
		}
		return
	}

	// Mapeamento de Erros de Negócio para Status HTTP
	status, category, message := apperror.MapToHTTPStatus(err)

	// Log apenas de erros graves; falhas 4xx são do cliente.
	if status >= 500 {
		h.Logger.Error("Erro interno no serviço de usuário.", err)
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	var vErr *apperror.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		errorResponse.Fields = vErr.Fields
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// RegisterUserHandler lida com a requisição POST /v1/register.
// @Summary Registra um novo usuário
// @Description Valida o formulário de registro, hasheia a senha, persiste o usuário com papel padrão e e-mail não confirmado e, conforme a configuração, emite um JWT.
// @Tags users
// @Accept json
// @Produce json
// @Param registration body domain.RegistrationRequest true "Dados de registro (nome, sobrenome, e-mail e senha)"
// @Success 201 {object} domain.RegistrationResult "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou senha fora da política"
// @Failure 409 {object} domain.ErrorResponse "E-mail já cadastrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /v1/register [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var reg domain.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	result, err := h.Service.Register(ctx, reg)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, result, nil, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /v1/login.
// @Summary Autentica um usuário e retorna um JWT
// @Description Recebe e-mail/senha, aplica o portão de e-mail confirmado, verifica a credencial e emite um JSON Web Token.
// @Tags users
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais do usuário (e-mail e senha)"
// @Success 200 {object} map[string]string "Token JWT emitido"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas ou e-mail não confirmado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /v1/login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	token, err := h.Service.Login(ctx, loginReq.Email, loginReq.Password)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	response := map[string]string{"token": token}
	h.handleServiceResponse(w, r, response, nil, http.StatusOK)
}

// ConfirmEmailHandler lida com a requisição POST /v1/confirm-email.
// @Summary Confirma o e-mail de um usuário
// @Description Consome um token de confirmação emitido no registro e marca o e-mail como confirmado.
// @Tags users
// @Accept json
// @Produce json
// @Param confirmation body ConfirmEmailRequest true "Token de confirmação"
// @Success 204 "E-mail confirmado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Token desconhecido ou expirado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /v1/confirm-email [post]
func (h *Handler) ConfirmEmailHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req ConfirmEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusNoContent)
		return
	}

	if err := h.Service.ConfirmEmail(ctx, req.Token); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
		return
	}

	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}

// MeHandler lida com a requisição GET /v1/me.
// @Summary Retorna o perfil do usuário autenticado
// @Description Lê as claims anexadas pelo middleware de autenticação e devolve o registro do usuário.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User "Perfil do usuário"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /v1/me [get]
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	user, err := h.Service.Profile(ctx, claims.UserID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, user, nil, http.StatusOK)
}
