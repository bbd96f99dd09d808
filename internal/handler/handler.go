package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/counter-roster/backend/internal/coordinator"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	coordinator *coordinator.Coordinator
	translator  ut.Translator
	metrics     http.Handler // 为 nil 时不暴露指标

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, coord *coordinator.Coordinator, metrics http.Handler) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		coordinator: coord,
		translator:  trans,
		metrics:     metrics,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	h.Mux.Route("/assignments", func(r chi.Router) {
		r.Post("/", h.CreateAssignment)
		r.Post("/check", h.CheckAssignment)
		r.Delete("/{id}", h.DeleteAssignment)
	})

	h.Mux.Get("/staff/{id}/assignments", h.GetStaffAssignments)

	// 负载均衡建议只读，不会修改排班
	h.Mux.Post("/suggestions", h.SuggestStaff)
	h.Mux.Post("/recommendations", h.RecommendStaff)

	if h.metrics != nil {
		h.Mux.Method(http.MethodGet, h.config.Metrics.Path, h.metrics)
	}
}
