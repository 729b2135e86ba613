package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/teambeat/standupbot/internal/api"
	"github.com/teambeat/standupbot/internal/bot"
	"github.com/teambeat/standupbot/internal/config"
	"github.com/teambeat/standupbot/internal/models"
	"github.com/teambeat/standupbot/internal/nlp"
	"github.com/teambeat/standupbot/internal/notes"
	"github.com/teambeat/standupbot/internal/services"
	"github.com/teambeat/standupbot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	stores, err := store.Open(cfg.StorageBackend, cfg.DatabaseURL, cfg.RedisURL, cfg.DataDir)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}
	log.Printf("📦 Storage backend: %s", cfg.StorageBackend)

	dg, err := bot.NewSession(cfg.DiscordToken)
	if err != nil {
		log.Fatalf("discord session: %v", err)
	}

	var remarks services.RemarkGenerator
	var dispatcher bot.Dispatcher
	if cfg.OpenAIKey != "" {
		client := nlp.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		remarks = client
		dispatcher = client
		log.Println("🧠 Natural language commands enabled")
	} else {
		log.Println("OPENAI_API_KEY not set, only !commands will work")
	}

	persistent := services.NewPersistentStandupService(stores.Groups, stores.History)
	manager := services.NewStandupGroupManager(persistent)
	groupSvc := services.NewStandupGroupService(persistent, manager, remarks, func(info models.NotesInfo) notes.Sink {
		return notes.SinkFor(dg, info)
	})
	settingsSvc := services.NewUserSettingsService(stores.Settings)
	userSvc := services.NewUserStandupService(settingsSvc, groupSvc)
	coordinator := services.NewStandupCoordinator(groupSvc, userSvc, settingsSvc)

	handler := &bot.BotHandler{
		Session:     dg,
		Coordinator: coordinator,
		Dispatcher:  dispatcher,
	}
	dg.AddHandler(handler.OnMessageCreate)

	if err := dg.Open(); err != nil {
		log.Fatalf("discord connect: %v", err)
	}
	defer dg.Close()

	if cfg.APIPort != "" {
		server := api.NewServer(coordinator, cfg.JWTSecret)
		go server.Start(":" + cfg.APIPort)
	}

	log.Println("Standup bot is live!")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop
}
