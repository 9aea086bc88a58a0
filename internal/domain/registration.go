package domain

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// emailPattern exige local-part de caracteres de palavra, domínio alfabético
// e TLD de 2 a 3 letras. Mantido idêntico à regra original do formulário.
var emailPattern = regexp.MustCompile(`^\w+@[a-zA-Z_]+?\.[a-zA-Z]{2,3}$`)

// RegistrationRequest representa o payload de entrada para o registro.
type RegistrationRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Validate avalia todas as regras estruturais do payload e retorna o conjunto
// completo de violações por campo (validation.Errors), nunca apenas a primeira.
// Não tem efeitos colaterais; o mesmo payload produz sempre o mesmo resultado.
func (r RegistrationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName,
			validation.Required.Error("O primeiro nome é obrigatório."),
			// RuneLength: o limite de 3 a 15 é em caracteres, não em bytes,
			// para aceitar nomes com acentuação.
			validation.RuneLength(3, 15).Error("deve ter no mínimo 3 e no máximo 15 caracteres"),
		),
		validation.Field(&r.LastName,
			validation.Required.Error("O sobrenome é obrigatório."),
			validation.RuneLength(3, 15).Error("deve ter no mínimo 3 e no máximo 15 caracteres"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("O e-mail é obrigatório."),
			validation.Match(emailPattern).Error("endereço de e-mail inválido"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("A senha é obrigatória."),
		),
	)
}
