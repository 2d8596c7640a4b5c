package roadmap

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/resources"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/services"
)

type progressRequest struct {
	RoadmapID  uint   `json:"roadmap_id"`
	ResourceID string `json:"resource_id"`
	Seconds    int    `json:"seconds"`
}

// loadOwnRoadmap: роадмап по id или активный, всегда своего пользователя
func loadOwnRoadmap(userID, roadmapID uint) (*roadmaps.Roadmap, error) {
	var rm roadmaps.Roadmap
	query := config.DB.Where("user_id = ?", userID)
	if roadmapID != 0 {
		query = query.Where("id = ?", roadmapID)
	} else {
		query = query.Where("active = ?", true)
	}
	if err := query.First(&rm).Error; err != nil {
		return nil, err
	}
	return &rm, nil
}

// writeTransitionError: конфликт состояния отличается от not found
func writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roadmaps.ErrResourceLocked),
		errors.Is(err, roadmaps.ErrAlreadyResolved),
		errors.Is(err, roadmaps.ErrNotOpened):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, roadmaps.ErrResourceNotFound),
		errors.Is(err, roadmaps.ErrModuleNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "Error updating progress", http.StatusInternalServerError)
	}
}

// CompleteResource: помечает ресурс пройденным и двигает разблокировку
func CompleteResource(w http.ResponseWriter, r *http.Request) {
	resolveHandler(w, r, false)
}

// SkipResource: пропускает ресурс, разблокировка идет как при завершении
func SkipResource(w http.ResponseWriter, r *http.Request) {
	resolveHandler(w, r, true)
}

func resolveHandler(w http.ResponseWriter, r *http.Request, skip bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResourceID == "" {
		http.Error(w, "resource_id is required", http.StatusBadRequest)
		return
	}

	rm, err := loadOwnRoadmap(claims.UserID, req.RoadmapID)
	if err != nil {
		http.Error(w, "Roadmap not found", http.StatusNotFound)
		return
	}

	var update *roadmaps.ProgressUpdate
	if skip {
		update, err = rm.SkipResource(req.ResourceID, time.Now())
	} else {
		update, err = rm.CompleteResource(req.ResourceID, time.Now())
	}
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	finishUpdate(w, rm, update)
}

// finishUpdate: генерирует summary закрытого модуля и сохраняет роадмап
func finishUpdate(w http.ResponseWriter, rm *roadmaps.Roadmap, update *roadmaps.ProgressUpdate) {
	if update.ModuleResolved {
		mod := &rm.Modules[update.ModuleIndex]
		// AI summary деградирует до канонического текста, прогресс уже засчитан
		mod.Summary = services.ModuleSummary(mod.Title, mod.SkillsCovered,
			mod.CompletedCount(), len(mod.Resources))
	}

	if err := config.DB.Save(rm).Error; err != nil {
		log.Error().Err(err).Uint("roadmap_id", rm.ID).Msg("failed to save progress")
		http.Error(w, "Error saving progress", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"update":              update,
		"progress_percentage": rm.ProgressPercentage,
		"roadmap_complete":    rm.Completed,
	})
}

// OpenResource: unlocked -> in_progress, повторное открытие не конфликт
func OpenResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResourceID == "" {
		http.Error(w, "resource_id is required", http.StatusBadRequest)
		return
	}

	rm, err := loadOwnRoadmap(claims.UserID, req.RoadmapID)
	if err != nil {
		http.Error(w, "Roadmap not found", http.StatusNotFound)
		return
	}

	res, err := rm.OpenResource(req.ResourceID, time.Now())
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	if err := config.DB.Save(rm).Error; err != nil {
		http.Error(w, "Error saving progress", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// UpdateTime: накапливает время по открытому ресурсу; при 90% от оценки
// ресурс закрывается обычным путем завершения
func UpdateTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResourceID == "" {
		http.Error(w, "resource_id is required", http.StatusBadRequest)
		return
	}
	if req.Seconds <= 0 {
		http.Error(w, "seconds must be positive", http.StatusBadRequest)
		return
	}

	rm, err := loadOwnRoadmap(claims.UserID, req.RoadmapID)
	if err != nil {
		http.Error(w, "Roadmap not found", http.StatusNotFound)
		return
	}

	update, autoCompleted, err := rm.AddTime(req.ResourceID, req.Seconds, time.Now())
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	if autoCompleted {
		finishUpdate(w, rm, update)
		return
	}

	if err := config.DB.Save(rm).Error; err != nil {
		http.Error(w, "Error saving progress", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"resource":       update.Resource,
		"auto_completed": false,
	})
}

// GetModuleSummary: сводка по модулю роадмапа
func GetModuleSummary(w http.ResponseWriter, r *http.Request) {
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
	moduleID := r.URL.Query().Get("module")
	if moduleID == "" {
		http.Error(w, "module id is required", http.StatusBadRequest)
		return
	}

	rm, err := loadOwnRoadmap(claims.UserID, uint(id))
	if err != nil {
		http.Error(w, "Roadmap not found", http.StatusNotFound)
		return
	}

	mod, index, err := rm.ModuleByID(moduleID)
	if err != nil {
		http.Error(w, "Module not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"module":                mod,
		"module_index":          index,
		"completed_resources":   mod.CompletedCount(),
		"resolved_resources":    mod.ResolvedCount(),
		"total_resources":       len(mod.Resources),
		"completion_percentage": mod.CompletionPercentage(),
		"estimated_hours":       mod.EstimatedHours(),
	})
}

// weekEntry: один элемент понедельного обзора плана
type weekEntry struct {
	Week            int      `json:"week"`
	ModuleID        string   `json:"module_id"`
	ModuleTitle     string   `json:"module_title"`
	Skills          []string `json:"skills"`
	HoursBudget     float64  `json:"hours_budget"`
	Completed       bool     `json:"completed"`
	TimeConstrained bool     `json:"time_constrained"`
}

// GetWeeks: понедельный обзор роадмапа, модуль растянут на свои недели
func GetWeeks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	id, _ := strconv.Atoi(r.URL.Query().Get("id"))
	rm, err := loadOwnRoadmap(claims.UserID, uint(id))
	if err != nil {
		http.Error(w, "Roadmap not found", http.StatusNotFound)
		return
	}

	var weeks []weekEntry
	for i := range rm.Modules {
		mod := &rm.Modules[i]
		span := mod.AllottedWeeks
		if span < 1 {
			span = 1
		}
		perWeek := mod.BudgetHours / float64(span)
		for offset := 0; offset < span; offset++ {
			weeks = append(weeks, weekEntry{
				Week:            mod.WeekNumber + offset,
				ModuleID:        mod.ID,
				ModuleTitle:     mod.Title,
				Skills:          mod.SkillsCovered,
				HoursBudget:     perWeek,
				Completed:       mod.Completed,
				TimeConstrained: mod.TimeConstrained,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"roadmap_id":     rm.ID,
		"deadline_weeks": rm.DeadlineWeeks,
		"hours_per_week": rm.HoursPerWeek,
		"weeks":          weeks,
	})
}

type rateRequest struct {
	ResourceID uint `json:"resource_id"`
	Score      int  `json:"score"`
}

// RateResource: оценка каталожного материала 1-5, повторная оценка
// перезаписывает прежнюю и пересчитывает агрегаты
func RateResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if req.Score < 1 || req.Score > 5 {
		http.Error(w, "score must be between 1 and 5", http.StatusBadRequest)
		return
	}

	var resource resources.Resource
	if err := config.DB.First(&resource, req.ResourceID).Error; err != nil {
		http.Error(w, "Resource not found", http.StatusNotFound)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var rating resources.ResourceRating
		oldScore := 0
		err := tx.Where("resource_id = ? AND user_id = ?", resource.ID, claims.UserID).
			First(&rating).Error
		switch {
		case err == nil:
			oldScore = rating.Score
			rating.Score = req.Score
			if err := tx.Save(&rating).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating = resources.ResourceRating{
				ResourceID: resource.ID,
				UserID:     claims.UserID,
				Score:      req.Score,
			}
			if err := tx.Create(&rating).Error; err != nil {
				return err
			}
		default:
			return err
		}

		resource.ApplyRating(oldScore, req.Score)
		return tx.Save(&resource).Error
	})
	if err != nil {
		http.Error(w, "Error saving rating", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"resource_id":    resource.ID,
		"average_rating": resource.AverageRating,
		"rating_count":   resource.RatingCount,
	})
}
