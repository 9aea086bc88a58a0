package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"goidentity/internal/domain"
	apperror "goidentity/internal/errors"
	"goidentity/internal/pkg/logger"
)

// Código de erro do PostgreSQL para violação de restrição de unicidade.
const pqUniqueViolation = "23505"

// UserRepository implementa a interface domain.UserRepository sobre PostgreSQL.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo usuário e seus vínculos de papel em uma única transação:
// ou o usuário e a credencial persistem juntos, ou nada persiste. A restrição
// de unicidade em normalized_email é o único ponto de controle de concorrência
// para registros simultâneos do mesmo e-mail (detectar e rejeitar).
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": user.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.NormalizedEmail == "" {
		user.NormalizedEmail = domain.NormalizeEmail(user.Email)
	}

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao abrir transação de registro.", err)
		return domain.User{}, apperror.NewDBError("Falha ao registrar usuário", err)
	}
	defer tx.Rollback()

	insertUser := `
        INSERT INTO users (id, email, normalized_email, first_name, last_name,
                           password_hash, email_confirmed, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.ExecContext(ctxTimeout, insertUser,
		user.ID,
		user.Email,
		user.NormalizedEmail,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.EmailConfirmed,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			r.logger.Info("Registro rejeitado: e-mail já em uso.", map[string]interface{}{"email": user.Email})
			return domain.User{}, apperror.NewConflictError(
				fmt.Sprintf("O e-mail '%s' já está em uso.", user.Email),
			)
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao inserir usuário", err)
	}

	for _, role := range user.Roles {
		if err := assignRoleTx(ctxTimeout, tx, user.ID, domain.UserRole(role)); err != nil {
			r.logger.Error("Falha ao vincular papel ao usuário.", err)
			return domain.User{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao confirmar transação de registro.", err)
		return domain.User{}, apperror.NewDBError("Falha ao registrar usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "email": user.Email})
	return user, nil
}

// assignRoleTx vincula um papel já existente na tabela roles ao usuário,
// dentro da transação corrente. Vincular um papel que o usuário já possui é
// um no-op: o ON CONFLICT absorve a chave primária de user_roles sem abortar
// a transação.
func assignRoleTx(ctx context.Context, tx *sql.Tx, userID string, role domain.UserRole) error {
	var roleID string
	err := tx.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = $1`, string(role)).Scan(&roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NewNotFoundError(fmt.Sprintf("Papel '%s' não existe.", role))
		}
		return apperror.NewDBError("Falha ao buscar papel", err)
	}

	query := `
        INSERT INTO user_roles (user_id, role_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, role_id) DO NOTHING`

	if _, err := tx.ExecContext(ctx, query, userID, roleID); err != nil {
		return apperror.NewDBError("Falha ao vincular papel", err)
	}
	return nil
}

// FindByEmail busca um usuário pelo e-mail normalizado, com seus papéis.
func (r *UserRepository) FindByEmail(ctx context.Context, normalizedEmail string) (domain.User, error) {
	r.logger.Debug("Iniciando FindByEmail de usuário no repositório.", map[string]interface{}{"email_attempt": normalizedEmail})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, email, normalized_email, first_name, last_name,
               password_hash, email_confirmed, created_at, updated_at
        FROM users
        WHERE normalized_email = $1`

	return r.findOne(ctxTimeout, query, normalizedEmail)
}

// FindByID busca um usuário pelo identificador, com seus papéis.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	r.logger.Debug("Iniciando FindByID de usuário no repositório.", map[string]interface{}{"user_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, email, normalized_email, first_name, last_name,
               password_hash, email_confirmed, created_at, updated_at
        FROM users
        WHERE id = $1`

	return r.findOne(ctxTimeout, query, id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (domain.User, error) {
	row := r.DB.QueryRowContext(ctx, query, arg)

	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.NormalizedEmail,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.EmailConfirmed,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Usuário não encontrado no DB.", nil)
			return domain.User{}, apperror.NewNotFoundError("Usuário não encontrado.")
		}
		r.logger.Error("Falha ao buscar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}

	roles, err := r.loadRoles(ctx, user.ID)
	if err != nil {
		return domain.User{}, err
	}
	user.Roles = roles

	return user, nil
}

// loadRoles carrega os nomes de papel vinculados ao usuário.
func (r *UserRepository) loadRoles(ctx context.Context, userID string) ([]string, error) {
	query := `
        SELECT ro.name
        FROM user_roles ur
        JOIN roles ro ON ro.id = ur.role_id
        WHERE ur.user_id = $1
        ORDER BY ro.name`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Falha ao buscar papéis do usuário.", err)
		return nil, apperror.NewDBError("Falha ao buscar papéis do usuário", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			r.logger.Error("Falha ao mapear papel do usuário.", err)
			return nil, apperror.NewDBError("Falha ao mapear papéis do usuário", err)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração de papéis", err)
	}

	return roles, nil
}

// ConfirmEmail marca o e-mail do usuário como confirmado.
func (r *UserRepository) ConfirmEmail(ctx context.Context, id string) error {
	r.logger.Debug("Iniciando ConfirmEmail no repositório.", map[string]interface{}{"user_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE users
        SET email_confirmed = TRUE, updated_at = $1
        WHERE id = $2`

	result, err := r.DB.ExecContext(ctxTimeout, query, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Falha ao confirmar e-mail no DB.", err)
		return apperror.NewDBError("Falha ao confirmar e-mail", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		r.logger.Info("Usuário não encontrado para confirmação de e-mail.", map[string]interface{}{"user_id": id})
		return apperror.NewNotFoundError("Usuário não encontrado.")
	}

	r.logger.Info("E-mail confirmado com sucesso.", map[string]interface{}{"user_id": id})
	return nil
}

// AssignRole vincula um papel a um usuário fora do fluxo de registro.
// Exposto para o processo de provisionamento de papéis.
func (r *UserRepository) AssignRole(ctx context.Context, userID string, role domain.UserRole) error {
	r.logger.Debug("Iniciando AssignRole no repositório.", map[string]interface{}{"user_id": userID, "role": role})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("Falha ao vincular papel", err)
	}
	defer tx.Rollback()

	if err := assignRoleTx(ctxTimeout, tx, userID, role); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.NewDBError("Falha ao vincular papel", err)
	}

	r.logger.Info("Papel vinculado com sucesso.", map[string]interface{}{"user_id": userID, "role": role})
	return nil
}
