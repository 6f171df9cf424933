/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/questbot-be/config"
	"github.com/tieubaoca/questbot-be/database"
	"github.com/tieubaoca/questbot-be/service"
	"github.com/tieubaoca/questbot-be/types"
)

// ingestDocumentCmd bulk-ingests local files into the corpus through the
// same replace-by-filename logic the upload endpoint uses.
var ingestDocumentCmd = &cobra.Command{
	Use:   "ingest-document [files...]",
	Short: "Ingest local documents into the corpus",
	Long: `Ingests one or more local document files (pdf, docx, odt, rtf, txt)
into the Weaviate corpus. A file whose name matches an already ingested
document replaces it.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		databaseURL, _ := cmd.Flags().GetString("database-url")
		text2vec := cmd.Flag("text2vec").Value.String()
		uploadDir, _ := cmd.Flags().GetString("upload-dir")
		reinit, _ := cmd.Flags().GetBool("reinit")

		extractService := service.NewExtractService()
		weaviateDb, err := database.NewWeaviateStore(config.WeaviateStoreConfig{
			Host:     databaseURL,
			APIKey:   os.Getenv("WEAVIATE_APIKEY"),
			Text2Vec: text2vec,
		}, extractService)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if reinit {
			if err := weaviateDb.ReInit(); err != nil {
				log.Fatalf("Failed to reinitialize Weaviate database: %v", err)
			}
		}

		corpusService := service.NewCorpusService(uploadDir, weaviateDb)

		files := make([]types.IngestFile, 0, len(args))
		for _, path := range args {
			files = append(files, types.IngestFile{
				Name: filepath.Base(path),
				Path: path,
			})
		}
		if err := corpusService.Upload(context.Background(), files); err != nil {
			log.Fatalf("Failed to ingest documents: %v", err)
		}
		log.Printf("Ingested %d file(s)", len(files))
	},
}

func init() {
	rootCmd.AddCommand(ingestDocumentCmd)

	ingestDocumentCmd.Flags().StringP("database-url", "d", "http://localhost:8080", "URL for the Weaviate database")
	ingestDocumentCmd.Flags().StringP("text2vec", "t", "text2vec-transformers", "Text2Vec module for the chunk class")
	ingestDocumentCmd.Flags().StringP("upload-dir", "u", "uploads", "Directory to archive ingested files in")
	ingestDocumentCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the database")
}
