package authentication

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/models/files"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
	"github.com/DhanushPadarthi/pathforge-backend/services"
)

const maxResumeSize = 10 << 20 // 10 MB

// UploadResume: принимает файл резюме, извлекает текст и навыки.
// Сбой парсера или AI не трогает прошлое состояние профиля.
func UploadResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		http.Error(w, "File too large or malformed form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !services.AllowedResumeExt(header.Filename) {
		http.Error(w, "Unsupported format, allowed: .pdf, .docx, .doc, .txt", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxResumeSize+1))
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	if len(data) > maxResumeSize {
		http.Error(w, "File too large, limit is 10 MB", http.StatusBadRequest)
		return
	}

	var user users.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// Сначала извлекаем текст: при сбое парсера старое резюме и профиль
	// остаются нетронутыми
	text, err := services.ParseResume(header.Filename, data)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("resume text extraction failed")
		http.Error(w, "Text extraction failed, resume not stored, profile unchanged. Try again later.", http.StatusBadGateway)
		return
	}

	extracted := services.ExtractSkills(text)

	// Подмена старого резюме на новое одной транзакцией
	stored := files.StoredFile{
		UserID:      user.ID,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&files.StoredFile{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&stored).Error; err != nil {
			return err
		}
		user.ResumeText = text
		user.ResumeFileID = stored.ID
		return tx.Save(&user).Error
	})
	if err != nil {
		http.Error(w, "Error storing file", http.StatusInternalServerError)
		return
	}

	// Добавляем только новые навыки, ручные записи не перетираются
	var existing []users.UserSkill
	config.DB.Where("user_id = ?", user.ID).Find(&existing)
	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[strings.ToLower(s.Name)] = true
	}

	added := 0
	for _, s := range extracted {
		if known[strings.ToLower(s.Name)] {
			continue
		}
		userSkill := users.UserSkill{
			UserID:      user.ID,
			SkillID:     ensureCatalogSkill(s.Name, s.Category),
			Name:        s.Name,
			Proficiency: s.Proficiency,
			AddedAt:     time.Now(),
		}
		if err := config.DB.Create(&userSkill).Error; err != nil {
			log.Error().Err(err).Str("skill", s.Name).Msg("failed to save extracted skill")
			continue
		}
		known[strings.ToLower(s.Name)] = true
		added++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":          "Resume processed",
		"resume_file_id":   stored.ID,
		"skills_extracted": added,
		"text_length":      len(text),
	})
}

// DownloadResume: отдает сохраненный файл резюме владельцу
func DownloadResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, err := ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	var stored files.StoredFile
	if err := config.DB.Where("user_id = ?", claims.UserID).Order("created_at DESC").First(&stored).Error; err != nil {
		http.Error(w, "No resume uploaded", http.StatusNotFound)
		return
	}

	contentType := stored.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stored.Name))
	w.Write(stored.Data)
}
