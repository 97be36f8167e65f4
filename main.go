package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/cors"

	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/api"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/internal/storage"
	"github.com/Developer-Chandan-Dev/first-sass-app-sub000/logging"
)

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Trace-Id"},
	AllowCredentials: true,
})

func main() {
	if err := logging.Init("debug"); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return
	}

	logging.Logger.Info("ledger reference server starting...")

	store := storage.NewInMemoryLedger()
	server := api.NewApi(store).Routes()

	port := os.Getenv("APP_PORT")
	if port == "" {
		logging.Logger.Info("APP_PORT environment variable not set, using default port 8080")
		port = "8080"
	}
	fmt.Println("Starting server on port: ", port)
	handlerWithCors := corsConf.Handler(server)
	err := http.ListenAndServe(":"+port, handlerWithCors) // Start the server
	if err != nil {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
}
