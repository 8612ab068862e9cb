package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"arxtract/internal/api"
	"arxtract/internal/arxiv"
	"arxtract/internal/config"
	"arxtract/internal/paper"
	"arxtract/internal/providers"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	pm, err := providers.NewManager(cfg)
	if err != nil {
		log.Fatal(err)
	}
	catalog := arxiv.NewClient(cfg.ArxivAPIBase, cfg.ArxivPDFBase, cfg.UserAgent, cfg.HTTPTimeout())
	svc := paper.NewService(cfg, catalog, pm.Embedder(), pm.LLM())
	srv := api.NewServer(cfg, svc)

	log.Printf("arxtract api listening on %s llm=%q embed=%q", cfg.APIAddr, pm.LLMRef().Raw, pm.EmbedRef().Raw)
	if err := http.ListenAndServe(cfg.APIAddr, srv.Routes()); err != nil {
		log.Fatal(err)
	}
}
