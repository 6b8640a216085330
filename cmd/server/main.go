package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"faq-chatbot/internal/chat"
	"faq-chatbot/internal/config"
	"faq-chatbot/internal/etl"
	"faq-chatbot/internal/helper"
	"faq-chatbot/internal/llm"
	"faq-chatbot/internal/server"
	"faq-chatbot/internal/session"
	"faq-chatbot/internal/vectorstore"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	ctx := context.Background()

	client, err := llm.New(&cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing llm client")
	}

	if err := helper.CreateFolder(cfg.Vector.PersistDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store folder")
	}
	store, err := vectorstore.New(cfg.Vector.PersistDir, cfg.Vector.Collection, chromem.EmbeddingFunc(client.Embed))
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}

	db := session.Connect(cfg.Database.DSN, cfg.Database.Debug)
	defer db.Close()
	sessions := session.NewStore(db)
	if err := sessions.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error initializing session store")
	}

	chatService := chat.NewService(client, store, sessions, &cfg.RAG)
	pipeline := etl.NewPipeline(cfg, client, store)

	srv := server.New(chatService, sessions, pipeline, cfg)
	router := srv.Router()

	log.Info().Str("addr", cfg.Server.Addr).Msg("FAQ chatbot server starting")
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
}
