package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/streakedin/streakedin/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}
	if err := server.Run(); err != nil {
		log.Error().Err(err).Msg("streakedin-server exited with error")
		os.Exit(1)
	}
}
