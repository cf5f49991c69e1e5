package httpapi

import (
	"net/http"
	"time"

	"shedsites-backend-go/internal/config"
	"shedsites-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	DB         *sqlx.DB
	Config     config.Config
	Selector   *services.Selector
	MetricsHub *services.MetricsHub
}

func NewServer(db *sqlx.DB, cfg config.Config, hub *services.MetricsHub) *Server {
	selector := services.NewSelector(&services.Store{DB: db})
	if cfg.RecencyWindowDays > 0 {
		selector.RecencyWindow = time.Duration(cfg.RecencyWindowDays) * 24 * time.Hour
	}
	return &Server{
		DB:         db,
		Config:     cfg,
		Selector:   selector,
		MetricsHub: hub,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover)
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/public/{dealerSlug}", func(pub chi.Router) {
			pub.Get("/buildings", s.PublicBuildings)
			pub.Get("/buildings/{serial}", s.PublicBuildingDetail)
			pub.Post("/leads", s.SubmitLead)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Post("/dealers", s.CreateDealer)
			admin.Route("/dealers/{dealerId}", func(dealer chi.Router) {
				dealer.Get("/buildings", s.AdminBuildings)
				dealer.Post("/inventory/import", s.ImportInventoryCSV)
				dealer.Post("/inventory/scrape", s.IngestScrapedInventory)
				dealer.Get("/leads", s.ListLeads)
			})
			admin.Route("/users/{userId}", func(user chi.Router) {
				user.Get("/queue", s.ListQueue)
				user.Post("/queue", s.EnqueuePost)
				user.Get("/posting-settings", s.GetPostingSettings)
				user.Put("/posting-settings", s.SavePostingSettings)
				user.Get("/templates", s.ListTemplates)
				user.Post("/templates", s.AddTemplate)
				user.Delete("/templates/{templateId}", s.DeleteTemplate)
				user.Post("/templates/preview", s.PreviewTemplate)
			})
			admin.Post("/serials/decode", s.DecodeSerial)
			admin.Get("/metrics/history", s.MetricsHistory)
		})
	})

	r.Get("/ws/metrics", s.MetricsSocket)
	return r
}
