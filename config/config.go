package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// PasswordPolicy agrupa os requisitos de senha aplicados pelo User Store
// antes do hashing. Os padrões reproduzem a política original do sistema:
// comprimento mínimo 6, sem exigência de dígito/maiúscula/minúscula/especial.
type PasswordPolicy struct {
	MinLength        int
	RequireDigit     bool
	RequireUppercase bool
	RequireLowercase bool
	RequireSpecial   bool
}

// Config armazena todas as configurações do aplicativo GoIdentity.
// A struct é construída uma única vez no início do processo e passada por
// referência às camadas que precisam dela — sem lookup global escondido.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Tokens de confirmação de e-mail (Redis)
	RedisAddr       string
	ConfirmTokenTTL time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	JWTIssuer    string
	TokenExpiry  time.Duration

	// Política de credenciais e portões de fluxo
	PasswordPolicy        PasswordPolicy
	RequireConfirmedEmail bool // Portão de login: exige e-mail confirmado
	RegisterIssuesToken   bool // Se true, o registro já devolve um JWT
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Banco de Dados (PostgreSQL)
		// mustGetEnv garante que a aplicação não inicie sem credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 3. Tokens de confirmação (Redis)
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		ConfirmTokenTTL: getDurationEnv("CONFIRM_TOKEN_TTL_MIN", 1440) * time.Minute, // 24h padrão

		// 4. Segurança (JWT)
		// A chave de assinatura é lida de forma antecipada: sem ela o processo
		// se recusa a subir.
		JWTSecretKey: mustGetEnv("JWT_SECRET_KEY"),
		JWTIssuer:    getEnv("JWT_ISSUER", "GoIdentity-API"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute, // 60 min padrão

		// 5. Política de senha
		PasswordPolicy: PasswordPolicy{
			MinLength:        getIntEnv("PASSWORD_MIN_LENGTH", 6),
			RequireDigit:     getBoolEnv("PASSWORD_REQUIRE_DIGIT", false),
			RequireUppercase: getBoolEnv("PASSWORD_REQUIRE_UPPER", false),
			RequireLowercase: getBoolEnv("PASSWORD_REQUIRE_LOWER", false),
			RequireSpecial:   getBoolEnv("PASSWORD_REQUIRE_SPECIAL", false),
		},

		// 6. Portões de fluxo
		RequireConfirmedEmail: getBoolEnv("SIGNIN_REQUIRE_CONFIRMED_EMAIL", true),
		RegisterIssuesToken:   getBoolEnv("REGISTER_ISSUES_TOKEN", false),
	}

	return cfg
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getBoolEnv lê uma variável de ambiente booleana ("true"/"false", "1"/"0").
func getBoolEnv(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um booleano válido. Usando padrão (%t).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
