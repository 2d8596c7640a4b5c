package roadmap

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/resources"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
	"github.com/DhanushPadarthi/pathforge-backend/services"
)

type generateRequest struct {
	RoleID        uint   `json:"role_id"`
	RoleTitle     string `json:"role_title"`
	HoursPerWeek  int    `json:"hours_per_week"`
	DeadlineWeeks int    `json:"deadline_weeks"`
}

// GenerateRoadmap: строит новый план по gap-анализу и каталогу.
// План собирается целиком в памяти и коммитится одной транзакцией:
// старый активный роадмап деактивируется, новый записывается. Сбой AI
// не срывает генерацию — остается детерминированный план.
func GenerateRoadmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	user, err := users.GetUserByID(claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	role, err := resolveRole(req.RoleID, req.RoleTitle, user.TargetRole)
	if err != nil {
		http.Error(w, "Career role not found, set a target role or pass role_id", http.StatusNotFound)
		return
	}

	var catalog []resources.Resource
	if err := config.DB.Where("available = ?", true).Find(&catalog).Error; err != nil {
		http.Error(w, "Error loading resource catalog", http.StatusInternalServerError)
		return
	}

	gap := services.AnalyzeGap(user.Skills, role)
	rm := services.BuildRoadmap(user, role, gap, catalog, services.GenerateOptions{
		HoursPerWeek:  req.HoursPerWeek,
		DeadlineWeeks: req.DeadlineWeeks,
	})

	// AI-декорация поверх готового плана, сбой дает канонический заголовок
	rm.Title = services.RoadmapTitle(role.Title, user.ExperienceLevel)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&roadmaps.Roadmap{}).
			Where("user_id = ? AND active = ?", user.ID, true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(rm).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to persist roadmap")
		http.Error(w, "Error saving roadmap", http.StatusInternalServerError)
		return
	}

	log.Info().Uint("user_id", user.ID).Uint("roadmap_id", rm.ID).
		Float64("match", rm.MatchPercentage).Int("modules", len(rm.Modules)).
		Msg("roadmap generated")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rm)
}

// resolveRole: роль по id, по названию или по целевой роли профиля
func resolveRole(roleID uint, roleTitle, targetRole string) (*skills.CareerRole, error) {
	var role skills.CareerRole
	query := config.DB
	switch {
	case roleID != 0:
		query = query.Where("id = ?", roleID)
	case roleTitle != "":
		query = query.Where("LOWER(title) = LOWER(?)", roleTitle)
	case targetRole != "":
		query = query.Where("LOWER(title) = LOWER(?)", targetRole)
	default:
		return nil, gorm.ErrRecordNotFound
	}
	if err := query.First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoadmaps: все роадмапы текущего пользователя, активный первым
func ListRoadmaps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var list []roadmaps.Roadmap
	if err := config.DB.Where("user_id = ?", claims.UserID).
		Order("active DESC, created_at DESC").Find(&list).Error; err != nil {
		http.Error(w, "Error loading roadmaps", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// GetRoadmap: один роадмап по id, чужой доступен только админу
func GetRoadmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid roadmap id", http.StatusBadRequest)
		return
	}

	var rm roadmaps.Roadmap
	if err := config.DB.First(&rm, id).Error; err != nil {
		http.Error(w, "Roadmap not found", http.StatusNotFound)
		return
	}

	if rm.UserID != claims.UserID && claims.Role != users.RoleAdmin {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rm)
}

// GetActiveRoadmap: активный роадмап текущего пользователя
func GetActiveRoadmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var rm roadmaps.Roadmap
	if err := config.DB.Where("user_id = ? AND active = ?", claims.UserID, true).
		First(&rm).Error; err != nil {
		http.Error(w, "No active roadmap, generate one first", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rm)
}

// DeleteRoadmap: мягкое удаление собственного роадмапа
func DeleteRoadmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid roadmap id", http.StatusBadRequest)
		return
	}

	var rm roadmaps.Roadmap
	if err := config.DB.First(&rm, id).Error; err != nil {
		http.Error(w, "Roadmap not found", http.StatusNotFound)
		return
	}
	if rm.UserID != claims.UserID && claims.Role != users.RoleAdmin {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	if err := config.DB.Delete(&rm).Error; err != nil {
		http.Error(w, "Error deleting roadmap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Roadmap deleted"})
}
