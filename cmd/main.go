package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"goidentity/config"
	"goidentity/internal/pkg/cache"
	"goidentity/internal/pkg/database"
	"goidentity/internal/pkg/logger"
	"goidentity/internal/pkg/token"

	// Camadas de identidade para Injeção de Dependências
	"goidentity/internal/api/router"
	"goidentity/internal/api/user"
	"goidentity/internal/repository/confirmrepo"
	"goidentity/internal/repository/userrepo"
	"goidentity/internal/service/userservice"
)

// @title GoIdentity API
// @version 1.0
// @description Serviço de registro e autenticação de usuários com emissão de JWT.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço GoIdentity...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz. Se não
	// existir, seguimos apenas com o ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	// LoadConfig encerra o processo se DATABASE_URL ou JWT_SECRET_KEY
	// estiverem ausentes: sem chave de assinatura o serviço não sobe.
	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Redis (tokens de confirmação de e-mail)
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Fatal("Falha ao conectar ao Redis.", err)
	}
	log.Info("Conexão Redis estabelecida.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Token/Repository -> Service -> Handler

	// A. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// B. Repositórios
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	confirmRepo := confirmrepo.NewConfirmationRepository(cacheClient, cfg.ConfirmTokenTTL, log)
	log.Debug("Repositórios de Usuário e Confirmação inicializados.", nil)

	// C. Serviço de Usuário (orquestra registro, login e confirmação)
	userSvc := userservice.NewService(userRepo, confirmRepo, tokenSvc, userservice.Options{
		PasswordPolicy:        cfg.PasswordPolicy,
		RequireConfirmedEmail: cfg.RequireConfirmedEmail,
		IssueTokenOnRegister:  cfg.RegisterIssuesToken,
	}, log)
	log.Debug("Serviço de Usuário inicializado.", nil)

	// D. Handler de Usuário
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Handler de Usuário inicializado.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(userHandler, tokenSvc)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor GoIdentity ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
