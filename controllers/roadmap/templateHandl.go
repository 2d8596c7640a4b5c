package roadmap

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
)

// ListTemplates: каталог готовых роадмапов, фильтр по категории
func ListTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list := roadmaps.Templates(r.URL.Query().Get("category"))
	if list == nil {
		list = []roadmaps.RoadmapTemplate{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// CloneTemplate: разворачивает шаблон в личный роадмап пользователя.
// Как и при генерации, старый активный роадмап деактивируется.
func CloneTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	tpl, ok := roadmaps.TemplateByID(r.URL.Query().Get("id"))
	if !ok {
		http.Error(w, "Template not found", http.StatusNotFound)
		return
	}

	rm := tpl.Instantiate(claims.UserID)
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&roadmaps.Roadmap{}).
			Where("user_id = ? AND active = ?", claims.UserID, true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(rm).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("user_id", claims.UserID).Str("template", tpl.ID).
			Msg("failed to clone template")
		http.Error(w, "Error saving roadmap", http.StatusInternalServerError)
		return
	}

	log.Info().Uint("user_id", claims.UserID).Uint("roadmap_id", rm.ID).
		Str("template", tpl.ID).Msg("template cloned")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rm)
}
