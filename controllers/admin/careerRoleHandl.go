package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
)

var validate = validator.New()

type careerRoleRequest struct {
	Title                string             `json:"title" validate:"required"`
	Description          string             `json:"description"`
	RequiredSkills       []skills.RoleSkill `json:"required_skills" validate:"required,min=1,dive"`
	RecommendedSkills    []string           `json:"recommended_skills"`
	AverageLearningHours int                `json:"average_learning_hours"`
	DifficultyLevel      string             `json:"difficulty_level"`
}

func validRoleSkills(list []skills.RoleSkill) bool {
	for _, s := range list {
		if s.Name == "" || s.Weight < 1 || s.Weight > 5 {
			return false
		}
	}
	return true
}

// CreateCareerRole: новая карьерная роль с весами требуемых навыков.
// Уже сгенерированные роадмапы хранят снимок требований и не меняются.
func CreateCareerRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := authentication.RequireAdmin(r); err != nil {
		writeAuthError(w, err)
		return
	}

	var req careerRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !validRoleSkills(req.RequiredSkills) {
		http.Error(w, "required_skills need a name and weight 1-5", http.StatusBadRequest)
		return
	}

	var existing skills.CareerRole
	if err := config.DB.Where("LOWER(title) = LOWER(?)", req.Title).First(&existing).Error; err == nil {
		http.Error(w, "Career role already exists", http.StatusConflict)
		return
	}

	role := skills.CareerRole{
		Title:                req.Title,
		Description:          req.Description,
		RequiredSkills:       req.RequiredSkills,
		RecommendedSkills:    req.RecommendedSkills,
		AverageLearningHours: req.AverageLearningHours,
		DifficultyLevel:      req.DifficultyLevel,
	}
	if err := config.DB.Create(&role).Error; err != nil {
		http.Error(w, "Error creating career role", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(role)
}

// UpdateCareerRole: правка роли, существующие роадмапы не трогает
func UpdateCareerRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := authentication.RequireAdmin(r); err != nil {
		writeAuthError(w, err)
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

	var req careerRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	if req.Title != "" {
		role.Title = req.Title
	}
	if req.Description != "" {
		role.Description = req.Description
	}
	if len(req.RequiredSkills) > 0 {
		if !validRoleSkills(req.RequiredSkills) {
			http.Error(w, "required_skills need a name and weight 1-5", http.StatusBadRequest)
			return
		}
		role.RequiredSkills = req.RequiredSkills
	}
	if len(req.RecommendedSkills) > 0 {
		role.RecommendedSkills = req.RecommendedSkills
	}
	if req.AverageLearningHours > 0 {
		role.AverageLearningHours = req.AverageLearningHours
	}
	if req.DifficultyLevel != "" {
		role.DifficultyLevel = req.DifficultyLevel
	}

	if err := config.DB.Save(&role).Error; err != nil {
		http.Error(w, "Error updating career role", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(role)
}

// DeleteCareerRole: мягкое удаление роли с аудитом
func DeleteCareerRole(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Invalid role id", http.StatusBadRequest)
		return
	}

	var role skills.CareerRole
	if err := config.DB.First(&role, id).Error; err != nil {
		http.Error(w, "Career role not found", http.StatusNotFound)
		return
	}

	if err := config.DB.Model(&role).Update("deleted_by", claims.UserID).Error; err != nil {
		http.Error(w, "Error deleting career role", http.StatusInternalServerError)
		return
	}
	if err := config.DB.Delete(&role).Error; err != nil {
		http.Error(w, "Error deleting career role", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Career role deleted"})
}

type skillRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`
}

// CreateSkill: добавление навыка в справочник
func CreateSkill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := authentication.RequireAdmin(r); err != nil {
		writeAuthError(w, err)
		return
	}

	var req skillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	var existing skills.Skill
	if err := config.DB.Where("LOWER(name) = LOWER(?)", req.Name).First(&existing).Error; err == nil {
		http.Error(w, "Skill already exists", http.StatusConflict)
		return
	}

	skill := skills.Skill{Name: req.Name, Category: req.Category}
	if err := config.DB.Create(&skill).Error; err != nil {
		http.Error(w, "Error creating skill", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(skill)
}

// DeleteSkill: удаление навыка из справочника
func DeleteSkill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := authentication.RequireAdmin(r); err != nil {
		writeAuthError(w, err)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid skill id", http.StatusBadRequest)
		return
	}

	result := config.DB.Delete(&skills.Skill{}, id)
	if result.Error != nil {
		http.Error(w, "Error deleting skill", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Skill not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Skill deleted"})
}
