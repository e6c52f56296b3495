package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/serkansentuna34/serkan-ai-api/internal/auth"
	"github.com/serkansentuna34/serkan-ai-api/internal/clients"
	"github.com/serkansentuna34/serkan-ai-api/internal/config"
	"github.com/serkansentuna34/serkan-ai-api/internal/mail"
	"github.com/serkansentuna34/serkan-ai-api/internal/model"
	"github.com/serkansentuna34/serkan-ai-api/internal/repository"
	"github.com/serkansentuna34/serkan-ai-api/internal/training"
)

type Server struct {
	cfg    config.Config
	store  *repository.Store
	engine *training.Engine
	mailer *mail.Mailer
	ai     *clients.Clients
	redis  *redis.Client
	logger *zap.Logger
}

func NewServer(cfg config.Config, store *repository.Store, engine *training.Engine, mailer *mail.Mailer, ai *clients.Clients, redisClient *redis.Client, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		engine: engine,
		mailer: mailer,
		ai:     ai,
		redis:  redisClient,
		logger: logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestLogger)
	r.Use(s.rateLimit)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.UploadDir))))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.With(s.authMiddleware).Post("/logout", s.handleLogout)
		r.With(s.authMiddleware).Get("/me", s.handleMe)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireAdmin)

		r.Get("/dashboard", s.handleAdminDashboard)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Get("/stats", s.handleUserStats)
			r.Get("/template", s.handleUserTemplate)
			r.Post("/import", s.handleImportUsers)
			r.Get("/{userId}", s.handleGetUser)
			r.Put("/{userId}", s.handleUpdateUser)
			r.Delete("/{userId}", s.handleDeleteUser)
			r.Put("/{userId}/role", s.handleUpdateUserRole)
			r.Put("/{userId}/status", s.handleUpdateUserStatus)
			r.Put("/{userId}/password", s.handleResetUserPassword)
		})

		r.Route("/classes", func(r chi.Router) {
			r.Get("/", s.handleListClasses)
			r.Post("/", s.handleCreateClass)
			r.Get("/{classId}", s.handleGetClass)
			r.Put("/{classId}", s.handleUpdateClass)
			r.Delete("/{classId}", s.handleDeleteClass)
			r.Get("/{classId}/stats", s.handleClassStats)
			r.Get("/{classId}/members", s.handleListClassMembers)
			r.Post("/{classId}/members", s.handleAddClassMember)
			r.Delete("/{classId}/members/{userId}", s.handleRemoveClassMember)
			r.Get("/{classId}/courses", s.handleListClassCourses)
			r.Post("/{classId}/courses", s.handleAssignClassCourse)
			r.Delete("/{classId}/courses/{courseId}", s.handleRemoveClassCourse)
			r.Post("/{classId}/assignments", s.handleAssignClassAssignment)
			r.Delete("/{classId}/assignments/{assignmentId}", s.handleRemoveClassAssignment)
		})

		r.Route("/system", func(r chi.Router) {
			r.Get("/health", s.handleSystemHealth)
			r.Get("/models", s.handleListModels)
			r.Post("/models/pull", s.handlePullModel)
			r.Get("/models/{name}", s.handleShowModel)
			r.Delete("/models/{name}", s.handleDeleteModel)
			r.Get("/workflows", s.handleListWorkflows)
			r.Get("/workflows/{workflowId}", s.handleExportWorkflow)
			r.Post("/workflows/{workflowId}/activate", s.handleActivateWorkflow)
			r.Post("/workflows/{workflowId}/deactivate", s.handleDeactivateWorkflow)
			r.Delete("/workflows/{workflowId}", s.handleDeleteWorkflow)
			r.Get("/flows", s.handleListFlows)
			r.Delete("/flows/{flowId}", s.handleDeleteFlow)
		})
	})

	r.Route("/api/courses", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListCourses)
		r.Get("/stats", s.handleCourseStats)
		r.With(s.requireStaff).Post("/", s.handleCreateCourse)
		r.Get("/{courseId}", s.handleGetCourse)
		r.With(s.requireStaff).Put("/{courseId}", s.handleUpdateCourse)
		r.With(s.requireAdmin).Delete("/{courseId}", s.handleDeleteCourse)
		r.Post("/{courseId}/complete", s.handleCompleteCourse)
	})

	r.Route("/api/assignments", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListAssignments)
		r.With(s.requireStaff).Post("/", s.handleCreateAssignment)
		r.Get("/{assignmentId}", s.handleGetAssignment)
		r.With(s.requireStaff).Put("/{assignmentId}", s.handleUpdateAssignment)
		r.With(s.requireAdmin).Delete("/{assignmentId}", s.handleDeleteAssignment)
		r.Post("/{assignmentId}/submit", s.handleSubmitAssignment)
		r.With(s.requireStaff).Get("/{assignmentId}/submissions", s.handleListSubmissions)
		r.With(s.requireStaff).Post("/submissions/{submissionId}/grade", s.handleGradeSubmission)
	})

	r.Route("/api/notes", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListNotes)
		r.Post("/", s.handleCreateNote)
		r.Post("/email", s.handleEmailNotes)
		r.Get("/{noteId}", s.handleGetNote)
		r.Put("/{noteId}", s.handleUpdateNote)
		r.Delete("/{noteId}", s.handleDeleteNote)
	})

	r.Route("/api/library", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleListLibrary)
		r.With(s.requireStaff).Post("/", s.handleCreateLibraryItem)
		r.Get("/{itemId}", s.handleGetLibraryItem)
		r.With(s.requireStaff).Put("/{itemId}", s.handleUpdateLibraryItem)
		r.With(s.requireAdmin).Delete("/{itemId}", s.handleDeleteLibraryItem)
		r.Post("/{itemId}/download", s.handleLibraryDownload)
	})

	r.Route("/api/upload", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/", s.handleUpload)
		r.With(s.requireStaff).Post("/material", s.handleUploadMaterial)
	})

	r.With(s.authMiddleware).Get("/api/dashboard", s.handleStudentDashboard)

	r.Route("/api/short-training", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/certificate-status", s.handleCertificateStatus)
		r.Post("/check-in", s.handleCheckIn)
		r.Get("/today-schedule", s.handleTodaySchedule)
		r.Get("/day-tracking", s.handleDayTracking)
		r.Get("/materials", s.handleTrainingMaterials)
		r.Get("/quick-notes", s.handleListQuickNotes)
		r.Post("/quick-notes", s.handleCreateQuickNote)
		r.Delete("/quick-notes/{noteId}", s.handleDeleteQuickNote)
	})

	return r
}

// Middleware

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return s.requireRole(next, model.RoleAdmin)
}

func (s *Server) requireStaff(next http.Handler) http.Handler {
	return s.requireRole(next, model.RoleAdmin, model.RoleInstructor)
}

func (s *Server) requireRole(next http.Handler, roles ...model.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		for _, role := range roles {
			if claims.Role == string(role) {
				next.ServeHTTP(w, r)
				return
			}
		}
		writeError(w, http.StatusForbidden, "forbidden")
	})
}

// rateLimit is a fixed-window per-IP limiter backed by Redis. Without a
// Redis client it is a no-op. Redis failures let the request through.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.redis == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("ratelimit:%s", clientIP(r))
		count, err := s.redis.Incr(r.Context(), key).Result()
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			s.redis.Expire(r.Context(), key, s.cfg.RateLimitWindow)
		}
		if count > int64(s.cfg.RateLimitMax) {
			writeError(w, http.StatusTooManyRequests, "rate_limited")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
