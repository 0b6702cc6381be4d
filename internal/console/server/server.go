package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xela07ax/hospital-console/internal/console/handler"
	"github.com/xela07ax/hospital-console/internal/infra/auth"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Handlers — обработчики бизнес-доменов консоли
type Handlers struct {
	Auth         *handler.AuthHandler        // /auth/token
	Public       *handler.PublicHandler      // запись на прием, обратная связь
	Dashboard    *handler.DashboardHandler   // /api/v1/dashboard
	Patients     *handler.PatientHandler     // /api/v1/patients
	Doctors      *handler.DoctorHandler      // /api/v1/doctors, /api/v1/departments
	Appointments *handler.AppointmentHandler // /api/v1/appointments
	Billing      *handler.BillingHandler     // /api/v1/billing
	Inventory    *handler.InventoryHandler   // /api/v1/inventory
	Reports      *handler.ReportHandler      // /api/v1/reports
}

const (
	formsPerSecond = 5
	formsBurst     = 20
)

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger

	// Проверка токенов (RS256)
	authValidator auth.TokenValidator
	// Проверка доступности БД для /health
	health func(r *http.Request) error
	// Лимит на публичные формы (запись, обратная связь)
	formLimiter *rate.Limiter

	h Handlers
}

// NewConsoleServer инициализирует сервер админки со всеми зависимостями
func NewConsoleServer(logger *zap.Logger, validator auth.TokenValidator, health func(r *http.Request) error, h Handlers) *ConsoleServer {
	s := &ConsoleServer{
		router:        chi.NewRouter(),
		logger:        logger.Named("console-api"),
		authValidator: validator,
		health:        health,
		formLimiter:   rate.NewLimiter(rate.Limit(formsPerSecond), formsBurst),
		h:             h,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(tracing)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Логин должен быть доступен без токена
		r.Post("/auth/token", s.h.Auth.Login)
		r.Get("/health", s.healthz)

		// Форма записи на сайте
		r.Get("/api/v1/departments", s.h.Doctors.ListDepartments)
		r.Get("/api/v1/doctors", s.h.Doctors.List)
		r.Get("/api/v1/appointments/slots", s.h.Public.Slots)
		r.With(rateLimit(s.formLimiter)).Post("/api/v1/appointments/book", s.h.Public.Book)
		r.With(rateLimit(s.formLimiter)).Post("/api/v1/contact", s.h.Public.Contact)
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требуют RS256 токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.authValidator, s.logger))

		// Dashboard & Stats
		r.Route("/api/v1/dashboard", func(r chi.Router) {
			r.Get("/stats", s.h.Dashboard.GetStats)
			r.Post("/refresh", s.h.Dashboard.Refresh)
			r.Get("/live", s.h.Dashboard.Live) // WebSocket, токен в ?access_token=
		})

		r.Route("/api/v1/patients", func(r chi.Router) {
			r.Get("/", s.h.Patients.List)
			r.Post("/", s.h.Patients.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.h.Patients.Get)
				r.Put("/", s.h.Patients.Update)
				r.With(auth.RequireRole("admin")).Delete("/", s.h.Patients.Delete)
			})
		})

		// Список врачей публичный, поэтому без r.Route: Mount перекрыл бы GET
		r.Post("/api/v1/doctors", s.h.Doctors.Create)
		r.Get("/api/v1/doctors/{id}", s.h.Doctors.Get)
		r.Put("/api/v1/doctors/{id}", s.h.Doctors.Update)
		r.With(auth.RequireRole("admin")).Delete("/api/v1/doctors/{id}", s.h.Doctors.Delete)
		r.With(auth.RequireRole("admin")).Post("/api/v1/departments", s.h.Doctors.CreateDepartment)

		r.Get("/api/v1/appointments", s.h.Appointments.List)
		r.Post("/api/v1/appointments", s.h.Appointments.Create)
		r.Get("/api/v1/appointments/{id}", s.h.Appointments.Get)
		r.Patch("/api/v1/appointments/{id}/status", s.h.Appointments.SetStatus)
		r.With(auth.RequireRole("admin")).Delete("/api/v1/appointments/{id}", s.h.Appointments.Delete)

		r.Route("/api/v1/billing", func(r chi.Router) {
			r.Get("/", s.h.Billing.List)
			r.Post("/", s.h.Billing.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.h.Billing.Get)
				r.Patch("/status", s.h.Billing.SetStatus)
				r.With(auth.RequireRole("admin")).Delete("/", s.h.Billing.Delete)
			})
		})

		r.Route("/api/v1/inventory", func(r chi.Router) {
			r.Get("/", s.h.Inventory.List)
			r.Post("/", s.h.Inventory.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/quantity", s.h.Inventory.SetQuantity)
				r.With(auth.RequireRole("admin")).Delete("/", s.h.Inventory.Delete)
			})
		})

		r.Route("/api/v1/reports", func(r chi.Router) {
			r.Get("/monthly.xlsx", s.h.Reports.Download)
			r.With(auth.RequireRole("admin")).Post("/monthly", s.h.Reports.Archive)
		})
	})
}

func (s *ConsoleServer) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
