package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/admin"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/analytics"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/chatbot"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/resource"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/roadmap"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/skill"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/trending"
	"github.com/DhanushPadarthi/pathforge-backend/models/files"
	"github.com/DhanushPadarthi/pathforge-backend/models/resources"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
)

func main() {
	// .env не обязателен, в проде переменные приходят из окружения
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := config.InitDB(); err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	err := config.DB.AutoMigrate(
		&users.User{},
		&users.UserSkill{},
		&users.GoogleUser{},
		&files.StoredFile{},
		&skills.Skill{},
		&skills.CareerRole{},
		&resources.Resource{},
		&resources.ResourceRating{},
		&roadmaps.Roadmap{},
	)
	if err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	sqlDB, err := config.DB.DB()
	if err != nil {
		log.Fatalf("failed to get database handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}

	if err := config.InitRedis(); err != nil {
		// без Redis чат теряет историю, trending считается напрямую
		zlog.Warn().Err(err).Msg("redis unavailable, cache and chat history disabled")
		config.Redis = nil
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/health", handleHealth)

	mux.HandleFunc("/api/auth/register", authentication.Register)
	mux.HandleFunc("/api/auth/login", authentication.Login)
	mux.HandleFunc("/api/auth/verify", authentication.Verify)
	mux.HandleFunc("/api/auth/logout", authentication.Logout)
	mux.HandleFunc("/api/auth/change-password", authentication.ChangePassword)
	mux.HandleFunc("/api/auth/google/login", authentication.HandleGoogleLogin)
	mux.HandleFunc("/api/auth/google/callback", authentication.HandleGoogleCallback)

	mux.HandleFunc("/api/users/me", authentication.GetMe)
	mux.HandleFunc("/api/users/profile", authentication.UpdateProfile)
	mux.HandleFunc("/api/users/complete-profile", authentication.CompleteProfile)
	mux.HandleFunc("/api/users/upload-resume", authentication.UploadResume)
	mux.HandleFunc("/api/users/resume", authentication.DownloadResume)
	mux.HandleFunc("/api/users/notifications", authentication.UpdateNotifications)
	mux.HandleFunc("/api/users/skills", authentication.UserSkills)
	mux.HandleFunc("/api/users/progress", authentication.GetProgressOverview)

	mux.HandleFunc("/api/skills", skill.ListSkills)
	mux.HandleFunc("/api/skills/analyze-gap", skill.AnalyzeGap)
	mux.HandleFunc("/api/career-roles", skill.ListCareerRoles)
	mux.HandleFunc("/api/career-roles/get", skill.GetCareerRole)

	mux.HandleFunc("/api/roadmaps/generate", roadmap.GenerateRoadmap)
	mux.HandleFunc("/api/roadmaps/templates", roadmap.ListTemplates)
	mux.HandleFunc("/api/roadmaps/templates/clone", roadmap.CloneTemplate)
	mux.HandleFunc("/api/roadmaps", roadmap.ListRoadmaps)
	mux.HandleFunc("/api/roadmaps/get", roadmap.GetRoadmap)
	mux.HandleFunc("/api/roadmaps/active", roadmap.GetActiveRoadmap)
	mux.HandleFunc("/api/roadmaps/delete", roadmap.DeleteRoadmap)
	mux.HandleFunc("/api/roadmaps/complete-resource", roadmap.CompleteResource)
	mux.HandleFunc("/api/roadmaps/skip-resource", roadmap.SkipResource)
	mux.HandleFunc("/api/roadmaps/open-resource", roadmap.OpenResource)
	mux.HandleFunc("/api/roadmaps/update-time", roadmap.UpdateTime)
	mux.HandleFunc("/api/roadmaps/module-summary", roadmap.GetModuleSummary)
	mux.HandleFunc("/api/roadmaps/weeks", roadmap.GetWeeks)
	mux.HandleFunc("/api/roadmaps/rate-resource", roadmap.RateResource)

	mux.HandleFunc("/api/resources", resource.Resources)
	mux.HandleFunc("/api/resources/get", resource.GetResource)
	mux.HandleFunc("/api/resources/search", resource.SearchResources)
	mux.HandleFunc("/api/resources/update", resource.UpdateResource)
	mux.HandleFunc("/api/resources/delete", resource.DeleteResource)

	mux.HandleFunc("/api/admin/users", admin.ListUsers)
	mux.HandleFunc("/api/admin/users/role", admin.UpdateUserRole)
	mux.HandleFunc("/api/admin/users/delete", admin.DeleteUser)
	mux.HandleFunc("/api/admin/stats", admin.GetStats)
	mux.HandleFunc("/api/admin/career-roles", admin.CreateCareerRole)
	mux.HandleFunc("/api/admin/career-roles/update", admin.UpdateCareerRole)
	mux.HandleFunc("/api/admin/career-roles/delete", admin.DeleteCareerRole)
	mux.HandleFunc("/api/admin/skills", admin.CreateSkill)
	mux.HandleFunc("/api/admin/skills/delete", admin.DeleteSkill)

	mux.HandleFunc("/api/analytics/streak", analytics.GetStreak)
	mux.HandleFunc("/api/analytics/daily-activity", analytics.GetDailyActivity)
	mux.HandleFunc("/api/analytics/weekly-summary", analytics.GetWeeklySummary)
	mux.HandleFunc("/api/analytics/completion-rate", analytics.GetCompletionRate)
	mux.HandleFunc("/api/analytics/productive-day", analytics.GetProductiveDay)

	mux.HandleFunc("/api/chatbot/chat", chatbot.Chat)
	mux.HandleFunc("/api/chatbot/history", chatbot.History)

	mux.HandleFunc("/api/trending/skills", trending.GetTrendingSkills)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(mux)

	zlog.Info().Str("port", port).Msg("pathforge backend listening")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "pathforge-backend",
		"status":  "ok",
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if sqlDB, err := config.DB.DB(); err != nil || sqlDB.Ping() != nil {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
