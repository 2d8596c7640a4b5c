package analytics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
	"github.com/DhanushPadarthi/pathforge-backend/services"
)

// activityEvent: одно закрытие ресурса с меткой времени
type activityEvent struct {
	When      time.Time
	Completed bool
	Seconds   int
}

// userActivity: все закрытия ресурсов пользователя по всем роадмапам.
// Метки времени лежат в JSON плана, агрегирование идет в приложении.
func userActivity(userID uint) ([]activityEvent, error) {
	var list []roadmaps.Roadmap
	if err := config.DB.Unscoped().Where("user_id = ?", userID).Find(&list).Error; err != nil {
		return nil, err
	}

	var events []activityEvent
	for i := range list {
		for mi := range list[i].Modules {
			for ri := range list[i].Modules[mi].Resources {
				res := &list[i].Modules[mi].Resources[ri]
				switch {
				case res.CompletedAt != nil:
					events = append(events, activityEvent{When: *res.CompletedAt, Completed: true, Seconds: res.TimeSpentSeconds})
				case res.SkippedAt != nil:
					events = append(events, activityEvent{When: *res.SkippedAt, Seconds: res.TimeSpentSeconds})
				}
			}
		}
	}
	return events, nil
}

func dayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// streakDays: непрерывные дни активности, считая от сегодня или вчера
func streakDays(events []activityEvent, now time.Time) int {
	active := make(map[string]bool, len(events))
	for _, e := range events {
		active[dayKey(e.When)] = true
	}

	day := now
	if !active[dayKey(day)] {
		day = day.AddDate(0, 0, -1) // сегодня еще без активности, стрик не сгорел
	}

	streak := 0
	for active[dayKey(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// GetStreak: текущий учебный стрик пользователя
func GetStreak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	events, err := userActivity(claims.UserID)
	if err != nil {
		http.Error(w, "Error loading activity", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"streak_days":    streakDays(events, time.Now()),
		"total_resolved": len(events),
	})
}

// GetDailyActivity: количество закрытых ресурсов по дням за 30 дней
func GetDailyActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	events, err := userActivity(claims.UserID)
	if err != nil {
		http.Error(w, "Error loading activity", http.StatusInternalServerError)
		return
	}

	counts := make(map[string]int)
	cutoff := time.Now().AddDate(0, 0, -30)
	for _, e := range events {
		if e.When.After(cutoff) {
			counts[dayKey(e.When)]++
		}
	}

	type dayActivity struct {
		Date     string `json:"date"`
		Resolved int    `json:"resolved"`
	}
	var days []dayActivity
	for i := 29; i >= 0; i-- {
		d := time.Now().AddDate(0, 0, -i)
		days = append(days, dayActivity{Date: dayKey(d), Resolved: counts[dayKey(d)]})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(days)
}

// GetWeeklySummary: сводка за 7 дней с мотивационным AI текстом
func GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	user, err := users.GetUserByID(claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	events, err := userActivity(claims.UserID)
	if err != nil {
		http.Error(w, "Error loading activity", http.StatusInternalServerError)
		return
	}

	cutoff := time.Now().AddDate(0, 0, -7)
	resolved, completed := 0, 0
	seconds := 0
	for _, e := range events {
		if !e.When.After(cutoff) {
			continue
		}
		resolved++
		if e.Completed {
			completed++
		}
		seconds += e.Seconds
	}
	hours := float64(seconds) / 3600
	streak := streakDays(events, time.Now())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"resolved_this_week":  resolved,
		"completed_this_week": completed,
		"skipped_this_week":   resolved - completed,
		"hours_spent":         hours,
		"streak_days":         streak,
		"summary":             services.WeeklySummary(user.Name, resolved, hours, streak),
	})
}

// GetCompletionRate: доля пройденного против пропущенного и общий прогресс
func GetCompletionRate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	events, err := userActivity(claims.UserID)
	if err != nil {
		http.Error(w, "Error loading activity", http.StatusInternalServerError)
		return
	}

	completed := 0
	for _, e := range events {
		if e.Completed {
			completed++
		}
	}

	rate := 0.0
	if len(events) > 0 {
		rate = float64(completed) / float64(len(events)) * 100
	}

	response := map[string]interface{}{
		"resolved":        len(events),
		"completed":       completed,
		"skipped":         len(events) - completed,
		"completion_rate": rate,
	}

	var rm roadmaps.Roadmap
	if err := config.DB.Where("user_id = ? AND active = ?", claims.UserID, true).First(&rm).Error; err == nil {
		response["active_roadmap_progress"] = rm.ProgressPercentage
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetProductiveDay: день недели с наибольшим числом закрытий
func GetProductiveDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := authentication.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	events, err := userActivity(claims.UserID)
	if err != nil {
		http.Error(w, "Error loading activity", http.StatusInternalServerError)
		return
	}

	var byWeekday [7]int
	for _, e := range events {
		byWeekday[int(e.When.Local().Weekday())]++
	}

	best := 0
	for i := 1; i < 7; i++ {
		if byWeekday[i] > byWeekday[best] {
			best = i
		}
	}

	response := map[string]interface{}{
		"weekday_counts": byWeekday,
	}
	if byWeekday[best] > 0 {
		response["most_productive_day"] = time.Weekday(best).String()
		response["resolved_on_that_day"] = byWeekday[best]
	} else {
		response["most_productive_day"] = nil
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
