package authentication

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
)

type profileUpdateRequest struct {
	Name            string `json:"name"`
	TargetRole      string `json:"target_role"`
	ExperienceLevel string `json:"experience_level"`
	HoursPerWeek    int    `json:"hours_per_week"`
}

// UpdateProfile: обновляет основные поля профиля
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var user users.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	if req.Name != "" {
		user.Name = sanitizer.Sanitize(req.Name)
	}
	if req.TargetRole != "" {
		user.TargetRole = sanitizer.Sanitize(req.TargetRole)
	}
	if req.ExperienceLevel != "" {
		user.ExperienceLevel = req.ExperienceLevel
	}
	if req.HoursPerWeek > 0 {
		user.HoursPerWeek = req.HoursPerWeek
	}

	if err := config.DB.Save(&user).Error; err != nil {
		http.Error(w, "Error updating profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

type completeProfileRequest struct {
	TargetRole      string `json:"target_role" validate:"required"`
	ExperienceLevel string `json:"experience_level"`
	HoursPerWeek    int    `json:"hours_per_week"`
	Skills          []struct {
		Name        string `json:"name"`
		Proficiency int    `json:"proficiency"`
	} `json:"skills"`
}

// CompleteProfile: анкета вместо резюме — целевая роль, время и навыки
// одним запросом, помечает профиль заполненным
func CompleteProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var user users.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var req completeProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	user.TargetRole = sanitizer.Sanitize(req.TargetRole)
	if req.ExperienceLevel != "" {
		user.ExperienceLevel = req.ExperienceLevel
	}
	if req.HoursPerWeek > 0 {
		user.HoursPerWeek = req.HoursPerWeek
	}
	user.ProfileCompleted = true

	// Анкета задает полный набор навыков, старый список заменяется
	if err := config.DB.Where("user_id = ?", user.ID).Delete(&users.UserSkill{}).Error; err != nil {
		http.Error(w, "Error updating skills", http.StatusInternalServerError)
		return
	}
	for _, s := range req.Skills {
		if s.Name == "" {
			continue
		}
		proficiency := s.Proficiency
		if proficiency < 1 {
			proficiency = 1
		}
		if proficiency > 5 {
			proficiency = 5
		}
		userSkill := users.UserSkill{
			UserID:      user.ID,
			SkillID:     ensureCatalogSkill(s.Name, ""),
			Name:        sanitizer.Sanitize(s.Name),
			Proficiency: proficiency,
			AddedAt:     time.Now(),
		}
		if err := config.DB.Create(&userSkill).Error; err != nil {
			http.Error(w, "Error saving skills", http.StatusInternalServerError)
			return
		}
	}

	if err := config.DB.Save(&user).Error; err != nil {
		http.Error(w, "Error updating profile", http.StatusInternalServerError)
		return
	}

	updated, err := users.GetUserByID(user.ID)
	if err != nil {
		http.Error(w, "Error loading profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// ensureCatalogSkill: находит или создает навык в справочнике
func ensureCatalogSkill(name, category string) uint {
	var existing skills.Skill
	if err := config.DB.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error; err == nil {
		return existing.ID
	} else if err != gorm.ErrRecordNotFound {
		return 0
	}

	newSkill := skills.Skill{Name: name, Category: category}
	if err := config.DB.Create(&newSkill).Error; err != nil {
		return 0
	}
	return newSkill.ID
}

type userSkillRequest struct {
	Name        string `json:"name"`
	Proficiency int    `json:"proficiency"`
}

// UserSkills: добавление, изменение и удаление навыков профиля
func UserSkills(w http.ResponseWriter, r *http.Request) {
	claims, err := ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req userSkillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}
		if req.Proficiency < 1 {
			req.Proficiency = 1
		}
		if req.Proficiency > 5 {
			req.Proficiency = 5
		}

		var existing users.UserSkill
		if err := config.DB.Where("user_id = ? AND LOWER(name) = LOWER(?)", claims.UserID, req.Name).First(&existing).Error; err == nil {
			http.Error(w, "Skill already in profile", http.StatusConflict)
			return
		}

		userSkill := users.UserSkill{
			UserID:      claims.UserID,
			SkillID:     ensureCatalogSkill(req.Name, ""),
			Name:        sanitizer.Sanitize(req.Name),
			Proficiency: req.Proficiency,
			AddedAt:     time.Now(),
		}
		if err := config.DB.Create(&userSkill).Error; err != nil {
			http.Error(w, "Error adding skill", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(userSkill)

	case http.MethodPut:
		id, _ := strconv.Atoi(r.URL.Query().Get("id"))
		var userSkill users.UserSkill
		if err := config.DB.Where("id = ? AND user_id = ?", id, claims.UserID).First(&userSkill).Error; err != nil {
			http.Error(w, "Skill not found", http.StatusNotFound)
			return
		}

		var req userSkillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid input", http.StatusBadRequest)
			return
		}
		if req.Proficiency >= 1 && req.Proficiency <= 5 {
			userSkill.Proficiency = req.Proficiency
		}
		if err := config.DB.Save(&userSkill).Error; err != nil {
			http.Error(w, "Error updating skill", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userSkill)

	case http.MethodDelete:
		id, _ := strconv.Atoi(r.URL.Query().Get("id"))
		result := config.DB.Where("id = ? AND user_id = ?", id, claims.UserID).Delete(&users.UserSkill{})
		if result.Error != nil {
			http.Error(w, "Error removing skill", http.StatusInternalServerError)
			return
		}
		if result.RowsAffected == 0 {
			http.Error(w, "Skill not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Skill removed"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// UpdateNotifications: настройки уведомлений
func UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var user users.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var prefs users.NotificationPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	user.Notifications = prefs
	if err := config.DB.Save(&user).Error; err != nil {
		http.Error(w, "Error updating notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Notifications)
}

// GetProgressOverview: профиль вместе с активным роадмапом одним ответом
func GetProgressOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	user, err := users.GetUserByID(claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"user": user,
	}

	var roadmap roadmaps.Roadmap
	if err := config.DB.Where("user_id = ? AND active = ?", claims.UserID, true).First(&roadmap).Error; err == nil {
		response["active_roadmap"] = map[string]interface{}{
			"id":                   roadmap.ID,
			"title":                roadmap.Title,
			"progress_percentage":  roadmap.ProgressPercentage,
			"current_module_index": roadmap.CurrentModuleIndex,
			"completed":            roadmap.Completed,
			"total_resources":      roadmap.TotalResources(),
			"resolved_resources":   roadmap.ResolvedResources(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
