package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/postify/postify/internal/blogservice"
	"github.com/postify/postify/internal/common"
	"github.com/postify/postify/internal/mailservice"
	"github.com/postify/postify/internal/notificationservice"
	"github.com/postify/postify/internal/userservice"
)

type application struct {
	config              *Config
	logger              *slog.Logger
	userService         *userservice.UserService
	blogService         *blogservice.BlogService
	notificationService *notificationservice.NotificationService
	mailService         *mailservice.MailService
	broker              *common.MessageBroker
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupNotificationExchange(broker)
	if err != nil {
		logger.Error("failed to setup the notification exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cache := common.NewCache(1*time.Minute, 5*time.Minute)
	tokens := userservice.NewTokenService(cfg.JWTSecret)
	notificationService := notificationservice.NewNotificationService(db, broker)

	app := &application{
		config:              cfg,
		logger:              logger,
		userService:         userservice.NewUserService(db, broker, tokens),
		blogService:         blogservice.NewBlogService(db, cache, notificationService),
		notificationService: notificationService,
		broker:              broker,
		mailService:         mailservice.NewMailService(broker, cfg.Mail.Host, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.Sender, cfg.Mail.Port, logger),
	}

	go app.mailService.SendWelcomeEmail()
	go app.mailService.SendActivityEmail()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
