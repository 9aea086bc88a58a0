package confirmrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apperror "goidentity/internal/errors"
	"goidentity/internal/pkg/cache"
	"goidentity/internal/pkg/logger"
)

const keyPrefix = "confirm-email:"

// ConfirmationRepository guarda tokens de confirmação de e-mail no Redis,
// com TTL. O token é opaco (UUID) e de uso único: consumir remove a chave.
type ConfirmationRepository struct {
	Cache  cache.Client
	TTL    time.Duration
	logger logger.Logger
}

// NewConfirmationRepository cria uma nova instância do repositório de tokens
// de confirmação, injetando o cliente de cache.
func NewConfirmationRepository(client cache.Client, ttl time.Duration, logger logger.Logger) *ConfirmationRepository {
	return &ConfirmationRepository{
		Cache:  client,
		TTL:    ttl,
		logger: logger,
	}
}

// Create gera um token de confirmação para o usuário e o armazena com TTL.
func (r *ConfirmationRepository) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()

	if err := r.Cache.Set(ctx, keyPrefix+token, userID, r.TTL); err != nil {
		r.logger.Error("Falha ao armazenar token de confirmação.", err)
		return "", apperror.NewInternalError("Falha ao criar token de confirmação de e-mail.", err)
	}

	r.logger.Debug("Token de confirmação criado.", map[string]interface{}{"user_id": userID})
	return token, nil
}

// Consume resolve o token para o ID do usuário e o invalida.
// Tokens desconhecidos ou expirados resultam em NotFoundError.
func (r *ConfirmationRepository) Consume(ctx context.Context, token string) (string, error) {
	userID, err := r.Cache.Get(ctx, keyPrefix+token)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Info("Token de confirmação desconhecido ou expirado.", nil)
			return "", apperror.NewNotFoundError("Token de confirmação inválido ou expirado.")
		}
		r.logger.Error("Falha ao buscar token de confirmação.", err)
		return "", apperror.NewInternalError("Falha ao buscar token de confirmação.", err)
	}

	if err := r.Cache.Delete(ctx, keyPrefix+token); err != nil {
		// A chave expira sozinha pelo TTL; a falha aqui não invalida a confirmação.
		r.logger.Warn("Falha ao remover token de confirmação consumido.", map[string]interface{}{"error": err.Error()})
	}

	return userID, nil
}
