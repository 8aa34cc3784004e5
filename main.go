package main

import (
	"net/http"
	"os"

	"github.com/omarstateECS/ECS-Mobisales-sub001/config"
	"github.com/omarstateECS/ECS-Mobisales-sub001/handlers"
	"github.com/omarstateECS/ECS-Mobisales-sub001/routes"
)

func main() {
	config.LoadEnv()
	log := config.NewLogger()

	db, err := config.Connect()
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer config.Close(db)

	if err := config.Migrations(db); err != nil {
		log.WithError(err).Fatal("could not run migrations")
	}

	h := handlers.New(db, log)
	handler := enableCORS(routes.RegisterRoutes(h))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("server starting")
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
