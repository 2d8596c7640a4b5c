package skill

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
	"github.com/DhanushPadarthi/pathforge-backend/services"
)

// ListSkills: справочник навыков, опционально по категории
func ListSkills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := config.DB.Order("name")
	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var list []skills.Skill
	if err := query.Find(&list).Error; err != nil {
		http.Error(w, "Error loading skills", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// ListCareerRoles: все карьерные роли с требованиями
func ListCareerRoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var roles []skills.CareerRole
	if err := config.DB.Order("title").Find(&roles).Error; err != nil {
		http.Error(w, "Error loading career roles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(roles)
}

// GetCareerRole: одна роль по id
func GetCareerRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid role id", http.StatusBadRequest)
		return
	}

	var role skills.CareerRole
	if err := config.DB.First(&role, id).Error; err != nil {
		http.Error(w, "Career role not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(role)
}

type analyzeGapRequest struct {
	RoleID    uint   `json:"role_id"`
	RoleTitle string `json:"role_title"`
}

// AnalyzeGap: сравнивает навыки текущего пользователя с требованиями роли,
// объяснение генерируется AI с детерминированным запасным текстом
func AnalyzeGap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req analyzeGapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if req.RoleID == 0 && req.RoleTitle == "" {
		http.Error(w, "role_id or role_title is required", http.StatusBadRequest)
		return
	}

	var role skills.CareerRole
	query := config.DB
	if req.RoleID != 0 {
		query = query.Where("id = ?", req.RoleID)
	} else {
		query = query.Where("LOWER(title) = LOWER(?)", req.RoleTitle)
	}
	if err := query.First(&role).Error; err != nil {
		http.Error(w, "Career role not found", http.StatusNotFound)
		return
	}

	var profile []users.UserSkill
	if err := config.DB.Where("user_id = ?", claims.UserID).Find(&profile).Error; err != nil {
		http.Error(w, "Error loading profile skills", http.StatusInternalServerError)
		return
	}

	analysis := services.AnalyzeGap(profile, &role)

	var missing []string
	for _, g := range analysis.MissingSkills {
		missing = append(missing, g.Skill)
	}
	analysis.Explanation = services.ExplainSkillGap(role.Title, analysis.MatchPercentage, missing)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analysis)
}
