package domain

import (
	"context"
	"strings"
	"time"
)

// User representa a entidade do usuário no sistema de identidade.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	NormalizedEmail string    `json:"-"` // Forma canônica do e-mail, usada na restrição de unicidade
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	PasswordHash    string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	EmailConfirmed  bool      `json:"email_confirmed"`
	Roles           []string  `json:"roles"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

// Constantes para os papéis de usuário
const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// PrimaryRole retorna o papel principal do usuário (o primeiro atribuído).
// Usuários recém-registrados sempre recebem o papel padrão "user".
func (u User) PrimaryRole() UserRole {
	if len(u.Roles) == 0 {
		return RoleUser
	}
	return UserRole(u.Roles[0])
}

// NormalizeEmail transforma um endereço de e-mail na forma canônica usada
// para comparação de unicidade no banco de dados.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegistrationResult é o retorno do fluxo de registro: o usuário criado e,
// dependendo da configuração, um JWT emitido imediatamente.
type RegistrationResult struct {
	User  User   `json:"user"`
	Token string `json:"token,omitempty"`
}

// UserRepository define o contrato de persistência para a entidade User.
type UserRepository interface {
	// Save insere o usuário e os vínculos de papel em uma única transação.
	Save(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, normalizedEmail string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	ConfirmEmail(ctx context.Context, id string) error
	// AssignRole vincula um papel existente a um usuário. Consumido pelo
	// processo de provisionamento de papéis, externo a este serviço.
	AssignRole(ctx context.Context, userID string, role UserRole) error
}

// ConfirmationTokenRepository define o contrato para tokens de confirmação
// de e-mail (armazenados com TTL, fora do banco relacional).
type ConfirmationTokenRepository interface {
	Create(ctx context.Context, userID string) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

// UserService define o contrato de lógica de negócio para a entidade User.
type UserService interface {
	Register(ctx context.Context, registration RegistrationRequest) (RegistrationResult, error)
	Login(ctx context.Context, email string, password string) (string, error)
	ConfirmEmail(ctx context.Context, token string) error
	Profile(ctx context.Context, userID string) (User, error)
}
