package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cerajamme/myPUPQC-chatbot/internal/config"
	"github.com/cerajamme/myPUPQC-chatbot/internal/logger"
	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
	mysqlClient "github.com/cerajamme/myPUPQC-chatbot/internal/platform/mysql"
	rabbitmqClient "github.com/cerajamme/myPUPQC-chatbot/internal/platform/rabbitmq"
	redisClient "github.com/cerajamme/myPUPQC-chatbot/internal/platform/redis"
	"github.com/cerajamme/myPUPQC-chatbot/internal/repository"
	"github.com/cerajamme/myPUPQC-chatbot/internal/worker"
)

type App struct {
	Config             *config.Config
	Log                *logrus.Logger
	MySQL              *gorm.DB
	Redis              *redis.Client
	MQConn             *amqp.Connection
	ConversationWorker *worker.ConversationWorker
	StudentChatbot     *model.Chatbot

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	log := logger.New()

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Chatbot{},
		&model.Document{},
		&model.DocumentChunk{},
		&model.DirectChat{},
		&model.DirectMessage{},
		&model.Conversation{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	chatbot, err := seedStudentChatbot(mysqlDB, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := seedAdminUser(mysqlDB, cfg, log); err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	conversationRepo := repository.NewConversationRepository(mysqlDB)
	conversationWorker := worker.NewConversationWorker(mqConn, conversationRepo, cfg.RabbitMQ.ConversationPersistQueue, log)
	if err := conversationWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start conversation worker failed: %w", err)
	}

	return &App{
		Config:             cfg,
		Log:                log,
		MySQL:              mysqlDB,
		Redis:              redisCli,
		MQConn:             mqConn,
		ConversationWorker: conversationWorker,
		StudentChatbot:     chatbot,
		StartedAt:          time.Now(),
	}, nil
}

// seedStudentChatbot guarantees exactly one student bot row exists.
func seedStudentChatbot(db *gorm.DB, cfg *config.Config, log *logrus.Logger) (*model.Chatbot, error) {
	repo := repository.NewChatbotRepository(db)

	existing, err := repo.GetByType(model.ChatbotTypeStudent)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	bot := &model.Chatbot{
		Name:           cfg.Chatbot.Name,
		Type:           model.ChatbotTypeStudent,
		Description:    "Answers student questions from uploaded handbook and policy documents.",
		EmbedCode:      uuid.NewString(),
		WelcomeMessage: cfg.Chatbot.WelcomeMessage,
		IsActive:       true,
	}
	if err := repo.Create(bot); err != nil {
		return nil, fmt.Errorf("seed student chatbot failed: %w", err)
	}
	log.WithField("embed_code", bot.EmbedCode).Info("seeded student chatbot")
	return bot, nil
}

// seedAdminUser creates the initial dashboard account from config when the
// email is not yet registered.
func seedAdminUser(db *gorm.DB, cfg *config.Config, log *logrus.Logger) error {
	repo := repository.NewUserRepository(db)

	existing, err := repo.GetByEmail(cfg.Auth.AdminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password failed: %w", err)
	}

	admin := &model.User{
		Email:        cfg.Auth.AdminEmail,
		FullName:     cfg.Auth.AdminFullName,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := repo.Create(admin); err != nil {
		return fmt.Errorf("seed admin user failed: %w", err)
	}
	log.WithField("email", admin.Email).Info("seeded admin user")
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.ConversationWorker != nil {
		a.ConversationWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
