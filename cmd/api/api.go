package api

import (
	"net/http"

	"github.com/creatorsclub/creators-club-server/identity"
	"github.com/creatorsclub/creators-club-server/monitoring"
	"github.com/creatorsclub/creators-club-server/service/posts"
	"github.com/creatorsclub/creators-club-server/service/users"
	"github.com/creatorsclub/creators-club-server/storage"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type APIServer struct {
	address   string
	db        *gorm.DB
	directory identity.Directory
	uploads   *storage.Client
}

func NewApiServer(address string, db *gorm.DB, directory identity.Directory, uploads *storage.Client) *APIServer {
	return &APIServer{
		address:   address,
		db:        db,
		directory: directory,
		uploads:   uploads,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	postHandler := posts.NewHandler(posts.NewGormStore(s.db), s.directory, s.uploads)
	postHandler.RegisterRoutes(subrouter)

	userHandler := users.NewHandler(users.NewGormStore(s.db), s.directory)
	userHandler.RegisterRoutes(subrouter)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, monitoring.NewPrometheusMiddleware(cors(router)))
}
