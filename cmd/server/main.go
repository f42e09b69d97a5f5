package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"footagelens/internal/ai"
	"footagelens/internal/api"
	"footagelens/internal/config"
	"footagelens/internal/database"
	"footagelens/internal/history"
	"footagelens/internal/storage"
)

func main() {
	var configPath = flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	initLogger(cfg.LogLevel)

	staging, err := storage.NewLocalStaging(cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to initialize staging storage: ", err)
	}

	db, err := database.NewDB(database.Config{
		Type:       cfg.DatabaseType,
		Host:       cfg.DatabaseHost,
		Port:       cfg.DatabasePort,
		User:       cfg.DatabaseUser,
		Password:   cfg.DatabasePass,
		Name:       cfg.DatabaseName,
		SQLitePath: cfg.DatabasePath,
	})
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	footageRepo := database.NewFootageRepository(db)

	if cfg.ProviderAPIKey == "" {
		log.Fatal("PROVIDER_API_KEY is required")
	}
	chatClient := ai.NewChatClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey, cfg.ProviderModel)

	frameExtractor, err := ai.NewFrameExtractor()
	if err != nil {
		log.Fatal("Failed to initialize frame extractor: ", err)
	}

	historyStore := history.NewStore(cfg.RedisAddr, cfg.RedisPassword, 24*time.Hour)
	defer historyStore.Close()

	app := &api.App{
		Staging:       staging,
		FootageRepo:   footageRepo,
		History:       historyStore,
		Describer:     ai.NewDescriber(chatClient, frameExtractor, cfg.MaxFrames, cfg.FrameSize),
		Responder:     ai.NewConversationalist(chatClient, cfg.HistoryLimit),
		MaxUploadSize: cfg.MaxUploadSize,
		HistoryLimit:  cfg.HistoryLimit,
	}

	router := api.NewRouter(app)

	slog.Info("server starting",
		"port", cfg.Port,
		"upload_dir", cfg.UploadDir,
		"db_type", cfg.DatabaseType,
		"provider", cfg.ProviderBaseURL,
		"model", cfg.ProviderModel,
	)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}

func initLogger(level string) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}
