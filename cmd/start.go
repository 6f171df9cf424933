/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/questbot-be/config"
	"github.com/tieubaoca/questbot-be/database"
	"github.com/tieubaoca/questbot-be/handler"
	"github.com/tieubaoca/questbot-be/service"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the questionnaire assistant server",
	Long:  `Starts the HTTP server exposing corpus management, chat and the questionnaire pipeline`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		extractService := service.NewExtractService()

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig, extractService)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		var aiService service.AIService
		switch cfg.AIProvider {
		case "gemini":
			aiService, err = service.NewGeminiService(cfg.GeminiAPIKeys, cfg.Model, weaviateDb, cfg.RetrievalLimit)
			if err != nil {
				log.Fatalf("Failed to create Gemini service: %v", err)
			}
		default:
			aiService = service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, weaviateDb, cfg.RetrievalLimit)
		}

		sessionStore := service.NewSessionStore()
		corpusService := service.NewCorpusService(cfg.UploadDir, weaviateDb)
		questionnaireService := service.NewQuestionnaireService(aiService, cfg.AnswerPolicy, cfg.AnswerLanguage)
		reportService := service.NewReportService(cfg.ExportPath)
		aggregator := service.NewStreamingResponseAggregator(time.Duration(cfg.StreamDelayMs) * time.Millisecond)
		wsService := service.NewWebSocketService(aiService, aggregator)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		corpusHandler := handler.NewCorpusHandler(corpusService, sessionStore)
		questionnaireHandler := handler.NewQuestionnaireHandler(questionnaireService, extractService, reportService, sessionStore)
		chatHandler := handler.NewChatHandler(aiService, sessionStore)

		// Setup routes
		router := chi.NewRouter()
		router.Use(corsHandler.Middleware)

		router.Route("/api/v1", func(r chi.Router) {
			r.Handle("/health", wsService.Health())
			r.Post("/chat", chatHandler.HandleChat)
			r.Get("/chat/stream", wsService.HandleChat)

			r.Route("/corpus", func(r chi.Router) {
				r.Get("/files", corpusHandler.HandleList)
				r.Post("/upload", corpusHandler.HandleUpload)
				r.Post("/select", corpusHandler.HandleSelect)
				r.Post("/deselect", corpusHandler.HandleDeselect)
				r.Delete("/selected", corpusHandler.HandleDeleteSelected)
				r.Delete("/all", corpusHandler.HandleDeleteAll)
			})

			r.Route("/questionnaire", func(r chi.Router) {
				r.Post("/extract", questionnaireHandler.HandleExtract)
				r.Post("/answer", questionnaireHandler.HandleAnswer)
				r.Get("/export", questionnaireHandler.HandleExport)
			})
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
