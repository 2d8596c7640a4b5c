package trending

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DhanushPadarthi/pathforge-backend/config"
)

const (
	cacheKey = "trending:skills"
	cacheTTL = time.Hour
	topLimit = 10
)

// trendingSkill: навык и сколько пользователей его указали
type trendingSkill struct {
	Name  string `json:"name"`
	Users int    `json:"users"`
}

// computeTrending: самые частые навыки в профилях живых пользователей,
// навыки удаленных аккаунтов не считаются
func computeTrending() ([]trendingSkill, error) {
	var list []trendingSkill
	err := config.DB.Table("user_skills").
		Select("user_skills.name, COUNT(DISTINCT user_skills.user_id) AS users").
		Joins("JOIN users ON users.id = user_skills.user_id AND users.deleted_at IS NULL").
		Group("user_skills.name").
		Order("users DESC, user_skills.name").
		Limit(topLimit).
		Scan(&list).Error
	return list, err
}

// GetTrendingSkills: топ навыков платформы, результат кэшируется в Redis.
// Недоступный Redis не ломает эндпоинт, считаем напрямую.
func GetTrendingSkills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if config.Redis != nil {
		if cached, err := config.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			w.Write(cached)
			return
		}
	}

	list, err := computeTrending()
	if err != nil {
		http.Error(w, "Error computing trending skills", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []trendingSkill{}
	}

	body, err := json.Marshal(list)
	if err != nil {
		http.Error(w, "Error encoding response", http.StatusInternalServerError)
		return
	}

	if config.Redis != nil {
		if err := config.Redis.Set(context.Background(), cacheKey, body, cacheTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to cache trending skills")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	w.Write(body)
}
