package resource

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/resources"
	"github.com/DhanushPadarthi/pathforge-backend/services"
)

var validate = validator.New()

// Resources: листинг для всех, создание только для админа
func Resources(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ListResources(w, r)
	case http.MethodPost:
		CreateResource(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ListResources: каталог материалов с фильтрами по типу и сложности
func ListResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := config.DB.Order("average_rating DESC, title")
	if t := r.URL.Query().Get("type"); t != "" {
		if !resources.ValidType(t) {
			http.Error(w, "Invalid type, allowed: video, article, course, practice", http.StatusBadRequest)
			return
		}
		query = query.Where("type = ?", t)
	}
	if difficulty := r.URL.Query().Get("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var list []resources.Resource
	if err := query.Find(&list).Error; err != nil {
		http.Error(w, "Error loading resources", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// GetResource: один материал по id
func GetResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid resource id", http.StatusBadRequest)
		return
	}

	var resource resources.Resource
	if err := config.DB.First(&resource, id).Error; err != nil {
		http.Error(w, "Resource not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resource)
}

type searchRequest struct {
	Skills []string `json:"skills" validate:"required,min=1"`
}

// SearchResources: материалы по навыкам. Теги лежат в JSON колонке,
// поэтому матчинг идет в приложении, без SQL по jsonb.
func SearchResources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "skills list is required", http.StatusBadRequest)
		return
	}

	var all []resources.Resource
	if err := config.DB.Where("available = ?", true).Find(&all).Error; err != nil {
		http.Error(w, "Error loading resources", http.StatusInternalServerError)
		return
	}

	var matched []resources.Resource
	for i := range all {
		for _, skill := range req.Skills {
			if all[i].HasSkillTag(skill) {
				matched = append(matched, all[i])
				break
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matched)
}

type resourceRequest struct {
	Title          string   `json:"title" validate:"required"`
	URL            string   `json:"url" validate:"required,url"`
	Type           string   `json:"type" validate:"required"`
	Provider       string   `json:"provider"`
	SkillTags      []string `json:"skill_tags" validate:"required,min=1"`
	EstimatedHours float64  `json:"estimated_hours" validate:"gt=0"`
	Difficulty     string   `json:"difficulty"`
}

// CreateResource: добавление материала в каталог, только админ.
// YouTube ссылки прогоняются через проверку доступности.
func CreateResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.RequireAdmin(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !resources.ValidType(req.Type) {
		http.Error(w, "Invalid type, allowed: video, article, course, practice", http.StatusBadRequest)
		return
	}

	resource := resources.Resource{
		Title:          req.Title,
		URL:            req.URL,
		Type:           req.Type,
		Provider:       req.Provider,
		SkillTags:      normalizeTags(req.SkillTags),
		EstimatedHours: req.EstimatedHours,
		Difficulty:     req.Difficulty,
		Available:      services.CheckResourceAvailable(req.URL),
		CreatedBy:      claims.UserID,
	}

	if err := config.DB.Create(&resource).Error; err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("failed to create resource")
		http.Error(w, "Error creating resource", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resource)
}

// UpdateResource: правка материала, только админ
func UpdateResource(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Invalid resource id", http.StatusBadRequest)
		return
	}

	var resource resources.Resource
	if err := config.DB.First(&resource, id).Error; err != nil {
		http.Error(w, "Resource not found", http.StatusNotFound)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	if req.Title != "" {
		resource.Title = req.Title
	}
	if req.URL != "" && req.URL != resource.URL {
		resource.URL = req.URL
		resource.Available = services.CheckResourceAvailable(req.URL)
	}
	if req.Type != "" {
		if !resources.ValidType(req.Type) {
			http.Error(w, "Invalid type, allowed: video, article, course, practice", http.StatusBadRequest)
			return
		}
		resource.Type = req.Type
	}
	if req.Provider != "" {
		resource.Provider = req.Provider
	}
	if len(req.SkillTags) > 0 {
		resource.SkillTags = normalizeTags(req.SkillTags)
	}
	if req.EstimatedHours > 0 {
		resource.EstimatedHours = req.EstimatedHours
	}
	if req.Difficulty != "" {
		resource.Difficulty = req.Difficulty
	}

	if err := config.DB.Save(&resource).Error; err != nil {
		http.Error(w, "Error updating resource", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resource)
}

// DeleteResource: мягкое удаление материала, только админ.
// Уже сгенерированные роадмапы хранят копию и не ломаются.
func DeleteResource(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Invalid resource id", http.StatusBadRequest)
		return
	}

	result := config.DB.Delete(&resources.Resource{}, id)
	if result.Error != nil {
		http.Error(w, "Error deleting resource", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Resource not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Resource deleted"})
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, authentication.ErrForbidden) {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return
	}
	http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
}
