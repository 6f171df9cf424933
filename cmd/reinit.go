/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/questbot-be/config"
	"github.com/tieubaoca/questbot-be/database"
	"github.com/tieubaoca/questbot-be/service"
)

// reinitCmd drops and recreates the chunk class. Everything in the
// corpus is lost.
var reinitCmd = &cobra.Command{
	Use:   "reinit",
	Short: "Drop and recreate the corpus schema",
	Run: func(cmd *cobra.Command, args []string) {
		databaseURL, _ := cmd.Flags().GetString("database-url")
		text2vec := cmd.Flag("text2vec").Value.String()

		weaviateDb, err := database.NewWeaviateStore(config.WeaviateStoreConfig{
			Host:     databaseURL,
			APIKey:   os.Getenv("WEAVIATE_APIKEY"),
			Text2Vec: text2vec,
		}, service.NewExtractService())
		if err != nil {
			log.Println("Failed to create Weaviate client:", err)
			os.Exit(1)
		}
		if err := weaviateDb.ReInit(); err != nil {
			log.Println("Failed to recreate chunk class:", err)
			os.Exit(1)
		}
		log.Println("Corpus schema recreated")
	},
}

func init() {
	rootCmd.AddCommand(reinitCmd)

	reinitCmd.Flags().StringP("database-url", "d", "http://localhost:8080", "URL for the Weaviate database")
	reinitCmd.Flags().StringP("text2vec", "t", "text2vec-transformers", "Text2Vec module for the chunk class")
}
