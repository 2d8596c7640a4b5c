package admin

import (
	"encoding/json"
	"errors"
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
)

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, authentication.ErrForbidden) {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return
	}
	http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
}

// ListUsers: все пользователи, опционально поиск по имени или email
func ListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := authentication.RequireAdmin(r); err != nil {
		writeAuthError(w, err)
		return
	}

	query := config.DB.Preload("Skills").Order("created_at DESC")
	if q := r.URL.Query().Get("q"); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", pattern, pattern)
	}

	var list []users.User
	if err := query.Find(&list).Error; err != nil {
		http.Error(w, "Error loading users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

type roleUpdateRequest struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// UpdateUserRole: смена роли student/admin
func UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.RequireAdmin(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req roleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if req.Role != users.RoleStudent && req.Role != users.RoleAdmin {
		http.Error(w, "role must be student or admin", http.StatusBadRequest)
		return
	}
	if req.UserID == claims.UserID && req.Role != users.RoleAdmin {
		http.Error(w, "Cannot demote your own account", http.StatusConflict)
		return
	}

	var user users.User
	if err := config.DB.First(&user, req.UserID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	user.Role = req.Role
	if err := config.DB.Save(&user).Error; err != nil {
		http.Error(w, "Error updating role", http.StatusInternalServerError)
		return
	}

	log.Info().Uint("admin_id", claims.UserID).Uint("user_id", user.ID).
		Str("role", req.Role).Msg("user role changed")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// DeleteUser: мягкое удаление аккаунта с аудитом, кто удалил.
// Роадмапы пользователя деактивируются, записи остаются.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.RequireAdmin(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	if uint(id) == claims.UserID {
		http.Error(w, "Cannot delete your own account", http.StatusConflict)
		return
	}

	var user users.User
	if err := config.DB.First(&user, id).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("deleted_by", claims.UserID).Error; err != nil {
			return err
		}
		if err := tx.Model(&roadmaps.Roadmap{}).
			Where("user_id = ?", user.ID).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		http.Error(w, "Error deleting user", http.StatusInternalServerError)
		return
	}

	log.Info().Uint("admin_id", claims.UserID).Uint("user_id", user.ID).Msg("user soft-deleted")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "User deleted"})
}

// GetStats: сводка по платформе для админской панели
func GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := authentication.RequireAdmin(r); err != nil {
		writeAuthError(w, err)
		return
	}

	var userCount, adminCount, roadmapCount, completedCount int64
	var resourceCount, skillCount, roleCount int64
	config.DB.Model(&users.User{}).Count(&userCount)
	config.DB.Model(&users.User{}).Where("role = ?", users.RoleAdmin).Count(&adminCount)
	config.DB.Model(&roadmaps.Roadmap{}).Count(&roadmapCount)
	config.DB.Model(&roadmaps.Roadmap{}).Where("completed = ?", true).Count(&completedCount)
	config.DB.Model(&resources.Resource{}).Count(&resourceCount)
	config.DB.Model(&skills.Skill{}).Count(&skillCount)
	config.DB.Model(&skills.CareerRole{}).Count(&roleCount)

	var avgProgress float64
	config.DB.Model(&roadmaps.Roadmap{}).Where("active = ?", true).
		Select("COALESCE(AVG(progress_percentage), 0)").Scan(&avgProgress)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"users":              userCount,
		"admins":             adminCount,
		"roadmaps":           roadmapCount,
		"completed_roadmaps": completedCount,
		"resources":          resourceCount,
		"skills":             skillCount,
		"career_roles":       roleCount,
		"average_progress":   avgProgress,
	})
}
