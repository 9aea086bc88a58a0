package userservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/crypto/bcrypt"

	"goidentity/config"
	"goidentity/internal/domain"
	apperror "goidentity/internal/errors"
	"goidentity/internal/pkg/logger"
	"goidentity/internal/pkg/token"
)

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// Options agrupa as decisões de fluxo carregadas da configuração.
type Options struct {
	PasswordPolicy        config.PasswordPolicy
	RequireConfirmedEmail bool // Login exige e-mail confirmado
	IssueTokenOnRegister  bool // Registro já devolve um JWT
}

// UserService implementa o fluxo de registro e autenticação: validação,
// política de senha, hashing, persistência e emissão de token.
type UserService struct {
	UserRepo    domain.UserRepository
	ConfirmRepo domain.ConfirmationTokenRepository
	TokenSvc    TokenService
	Opts        Options
	logger      logger.Logger
}

// NewService cria uma nova instância do UserService, injetando os repositórios
// e o serviço de token.
func NewService(repo domain.UserRepository, confirmRepo domain.ConfirmationTokenRepository, tokenSvc TokenService, opts Options, log logger.Logger) *UserService {
	return &UserService{
		UserRepo:    repo,
		ConfirmRepo: confirmRepo,
		TokenSvc:    tokenSvc,
		Opts:        opts,
		logger:      log,
	}
}

// Register registra um novo usuário no sistema.
//
// Sequência: validação estrutural → política de senha → hashing → persistência
// (usuário + papel padrão, transacional) → token de confirmação de e-mail →
// JWT, se a configuração mandar emitir já no registro. Falhas depois da
// persistência não são compensadas: o usuário criado permanece no banco e o
// erro é devolvido ao chamador.
func (s *UserService) Register(ctx context.Context, registration domain.RegistrationRequest) (domain.RegistrationResult, error) {
	// 1. Validação estrutural do payload. Nada chega ao repositório sem passar aqui.
	if err := registration.Validate(); err != nil {
		s.logger.Debug("Registro rejeitado pela validação.", map[string]interface{}{"email": registration.Email})
		return domain.RegistrationResult{}, toValidationError(err)
	}

	// 2. Política de senha (comprimento mínimo e classes de caracteres exigidas).
	if err := checkPasswordPolicy(s.Opts.PasswordPolicy, registration.Password); err != nil {
		return domain.RegistrationResult{}, err
	}

	// 3. Hashing da senha. O texto puro não sai deste escopo.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegistrationResult{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 4. Persistência: usuário com e-mail não confirmado e papel padrão.
	newUser := domain.User{
		Email:           registration.Email,
		NormalizedEmail: domain.NormalizeEmail(registration.Email),
		FirstName:       registration.FirstName,
		LastName:        registration.LastName,
		PasswordHash:    string(hashedPassword),
		EmailConfirmed:  false,
		Roles:           []string{string(domain.RoleUser)},
	}

	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		// ConflictError (e-mail duplicado) e erros de infraestrutura sobem
		// já tipados para o handler traduzir.
		return domain.RegistrationResult{}, err
	}

	// 5. Token de confirmação de e-mail. O usuário já está persistido; uma
	// falha aqui é reportada sem rollback.
	if _, err := s.ConfirmRepo.Create(ctx, user.ID); err != nil {
		s.logger.Error("Usuário criado, mas o token de confirmação falhou.", err)
		return domain.RegistrationResult{}, err
	}

	result := domain.RegistrationResult{User: user}

	// 6. Emissão imediata de JWT, quando configurada. O padrão é adiar a
	// emissão para o login, já que o portão de e-mail confirmado impediria o
	// uso do token de qualquer forma.
	if s.Opts.IssueTokenOnRegister {
		tokenString, err := s.TokenSvc.GenerateToken(user.ID, string(user.PrimaryRole()))
		if err != nil {
			s.logger.Error("Usuário criado, mas a emissão do token falhou.", err)
			return domain.RegistrationResult{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
		}
		result.Token = tokenString
	}

	s.logger.Info("Registro concluído.", map[string]interface{}{"user_id": user.ID})
	return result, nil
}

// Login autentica um usuário, verifica a senha e gera um JWT.
func (s *UserService) Login(ctx context.Context, email string, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.NewUnauthorizedError("E-mail e senha são obrigatórios.")
	}

	// 1. Buscar usuário pelo e-mail normalizado. NotFound vira Unauthorized
	// para não dar dicas a invasores sobre contas existentes.
	user, err := s.UserRepo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", err
	}

	// 2. Portão de e-mail confirmado (configurável).
	if s.Opts.RequireConfirmedEmail && !user.EmailConfirmed {
		return "", apperror.NewUnauthorizedError("E-mail ainda não confirmado.")
	}

	// 3. Comparar a senha informada com o hash salvo.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// 4. Gerar o JWT.
	tokenString, err := s.TokenSvc.GenerateToken(user.ID, string(user.PrimaryRole()))
	if err != nil {
		return "", apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return tokenString, nil
}

// ConfirmEmail consome um token de confirmação e marca o e-mail do usuário
// como confirmado.
func (s *UserService) ConfirmEmail(ctx context.Context, confirmToken string) error {
	if confirmToken == "" {
		return apperror.NewValidationError("O token de confirmação é obrigatório.")
	}

	userID, err := s.ConfirmRepo.Consume(ctx, confirmToken)
	if err != nil {
		return err
	}

	if err := s.UserRepo.ConfirmEmail(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("E-mail confirmado.", map[string]interface{}{"user_id": userID})
	return nil
}

// Profile retorna os dados do usuário autenticado.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.UserRepo.FindByID(ctx, userID)
}

// toValidationError converte o resultado do ozzo-validation (mapa campo →
// erro) no nosso erro tipado com detalhe por campo.
func toValidationError(err error) error {
	if vErrs, ok := err.(validation.Errors); ok {
		fields := make(map[string]string, len(vErrs))
		for field, fieldErr := range vErrs {
			fields[field] = fieldErr.Error()
		}
		return apperror.NewFieldValidationError("O payload de registro contém campos inválidos.", fields)
	}
	return apperror.NewValidationError(err.Error())
}

// checkPasswordPolicy aplica a política de senha configurada. Todas as
// violações são reunidas em uma única mensagem.
func checkPasswordPolicy(policy config.PasswordPolicy, password string) error {
	var problems []string

	// O mínimo é em caracteres, não em bytes: senhas acentuadas não ganham
	// comprimento extra pela codificação UTF-8.
	if utf8.RuneCountInString(password) < policy.MinLength {
		problems = append(problems, fmt.Sprintf("a senha deve ter no mínimo %d caracteres", policy.MinLength))
	}

	var hasDigit, hasUpper, hasLower, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}

	if policy.RequireDigit && !hasDigit {
		problems = append(problems, "a senha deve conter ao menos um dígito")
	}
	if policy.RequireUppercase && !hasUpper {
		problems = append(problems, "a senha deve conter ao menos uma letra maiúscula")
	}
	if policy.RequireLowercase && !hasLower {
		problems = append(problems, "a senha deve conter ao menos uma letra minúscula")
	}
	if policy.RequireSpecial && !hasSpecial {
		problems = append(problems, "a senha deve conter ao menos um caractere especial")
	}

	if len(problems) > 0 {
		return apperror.NewWeakPasswordError(strings.Join(problems, "; "))
	}
	return nil
}
