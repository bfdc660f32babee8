package main

import (
	"log"
	"net/http"

	"lexflow/internal/api"
	"lexflow/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("lexflow api listening on %s llm_providers=%q embed_providers=%q rerank=%q", cfg.APIAddr, cfg.LLMProviders, cfg.EmbedProviders, cfg.RerankProvider)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
