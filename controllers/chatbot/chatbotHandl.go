package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
	"github.com/DhanushPadarthi/pathforge-backend/services"
)

const (
	historyLimit = 20
	historyTTL   = 7 * 24 * time.Hour
)

var sanitizer = bluemonday.StrictPolicy()

func historyKey(userID uint) string {
	return fmt.Sprintf("chat:history:%d", userID)
}

// loadHistory: история диалога из Redis; без Redis чат работает без памяти
func loadHistory(ctx context.Context, userID uint) []services.ChatMessage {
	if config.Redis == nil {
		return nil
	}
	raw, err := config.Redis.LRange(ctx, historyKey(userID), 0, historyLimit-1).Result()
	if err != nil {
		log.Warn().Err(err).Msg("chat history unavailable, continuing without it")
		return nil
	}

	var history []services.ChatMessage
	for _, item := range raw {
		var msg services.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err == nil {
			history = append(history, msg)
		}
	}
	return history
}

func appendHistory(ctx context.Context, userID uint, messages ...services.ChatMessage) {
	if config.Redis == nil {
		return
	}
	key := historyKey(userID)
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := config.Redis.RPush(ctx, key, data).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to append chat history")
			return
		}
	}
	config.Redis.LTrim(ctx, key, -historyLimit, -1)
	config.Redis.Expire(ctx, key, historyTTL)
}

// userContext: профиль и активный роадмап как контекст для ассистента
func userContext(userID uint) string {
	var b strings.Builder

	user, err := users.GetUserByID(userID)
	if err != nil {
		return "No profile data available."
	}

	fmt.Fprintf(&b, "Name: %s\n", user.Name)
	if user.TargetRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", user.TargetRole)
	}
	if user.ExperienceLevel != "" {
		fmt.Fprintf(&b, "Experience level: %s\n", user.ExperienceLevel)
	}
	if len(user.Skills) > 0 {
		var names []string
		for _, s := range user.Skills {
			names = append(names, s.Name)
		}
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(names, ", "))
	}

	var rm roadmaps.Roadmap
	if err := config.DB.Where("user_id = ? AND active = ?", userID, true).First(&rm).Error; err == nil {
		fmt.Fprintf(&b, "Active roadmap: %s (%.0f%% done, module %d of %d)\n",
			rm.Title, rm.ProgressPercentage, rm.CurrentModuleIndex+1, len(rm.Modules))
		if rm.CurrentModuleIndex < len(rm.Modules) {
			fmt.Fprintf(&b, "Current module: %s\n", rm.Modules[rm.CurrentModuleIndex].Title)
		}
	}
	return b.String()
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat: вопрос ассистенту с контекстом профиля и историей диалога
func Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	message := strings.TrimSpace(sanitizer.Sanitize(req.Message))
	if message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	history := loadHistory(ctx, claims.UserID)
	reply := services.ChatReply(userContext(claims.UserID), history, message)

	appendHistory(ctx, claims.UserID,
		services.ChatMessage{Role: "user", Content: message},
		services.ChatMessage{Role: "assistant", Content: reply})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"reply": reply})
}

// History: чтение и очистка истории диалога на одном пути
func History(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		getHistory(w, r)
	case http.MethodDelete:
		clearHistory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func getHistory(w http.ResponseWriter, r *http.Request) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	history := loadHistory(r.Context(), claims.UserID)
	if history == nil {
		history = []services.ChatMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}

func clearHistory(w http.ResponseWriter, r *http.Request) {
	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if config.Redis != nil {
		config.Redis.Del(r.Context(), historyKey(claims.UserID))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "History cleared"})
}
