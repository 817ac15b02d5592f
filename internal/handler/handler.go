package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/backfill"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/backfill-manager/backend/internal/repository"
)

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   *repository.Repository
	service      *backfill.Service
	translator   ut.Translator
	eventChannel *amqp.Channel
	redisClient  *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, svc *backfill.Service, eventCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		service:      svc,
		translator:   trans,
		eventChannel: eventCh,
		redisClient:  rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 本服务不提供登录接口，所有 API 都需要网关签发的令牌
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/employees", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.OperatorRole{domain.RoleCoordinator})).Post("/", h.CreateEmployee)
			r.Get("/", h.GetAllEmployees) // 排替班需要看到所有人的基本信息
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.employeeCtx)
				r.Get("/", h.GetEmployee)
				r.With(h.RequiredRole([]domain.OperatorRole{domain.RoleCoordinator})).Patch("/", h.UpdateEmployee)
				r.Get("/workload", h.GetEmployeeWorkload)
			})
		})

		r.Route("/absences", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.OperatorRole{domain.RoleCoordinator})).Post("/", h.CreateAbsence)
			r.Get("/", h.GetAllAbsences)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.absenceCtx)
				r.Get("/", h.GetAbsence)
				r.Get("/candidates", h.GetAbsenceCandidates)
				r.Get("/coverage", h.GetAbsenceCoverage)
				r.Route("/assignments", func(r chi.Router) {
					r.With(h.RequiredRole([]domain.OperatorRole{domain.RoleCoordinator})).Post("/", h.CreateAssignment)
					r.Get("/", h.GetAbsenceAssignments)
				})
			})
		})

		r.Route("/assignments/{id}", func(r chi.Router) {
			r.Use(h.assignmentCtx)
			r.Get("/", h.GetAssignment)
			r.Post("/confirm", h.ConfirmAssignment)
			r.Post("/reject", h.RejectAssignment)
			r.With(h.RequiredRole([]domain.OperatorRole{domain.RoleCoordinator})).Post("/cancel", h.CancelAssignment)
			r.With(h.RequiredRole([]domain.OperatorRole{domain.RoleCoordinator})).Post("/complete", h.CompleteAssignment)
		})
	})
}
