package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Поддерживаемые расширения резюме
var allowedResumeExt = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
}

// AllowedResumeExt: проверяет расширение файла резюме
func AllowedResumeExt(filename string) bool {
	return allowedResumeExt[strings.ToLower(filepath.Ext(filename))]
}

var (
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// CleanResumeText: нормализует извлеченный текст
func CleanResumeText(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ParseResume: извлекает текст из файла резюме. Бинарные форматы уходят
// во внешний парсер (RESUME_PARSER_URL, tika-совместимый), .txt читается
// напрямую. Ошибка парсера не трогает сохраненный профиль — caller
// отдает degraded-ответ.
func ParseResume(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedResumeExt[ext] {
		return "", fmt.Errorf("unsupported resume format: %s", ext)
	}

	if ext == ".txt" {
		return CleanResumeText(string(data)), nil
	}

	parserURL := os.Getenv("RESUME_PARSER_URL")
	if parserURL == "" {
		return "", fmt.Errorf("resume parser is not configured")
	}

	req, err := http.NewRequest("PUT", strings.TrimRight(parserURL, "/")+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create parser request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resume parser unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("resume parser returned status %d: %s", resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read parser response: %w", err)
	}

	text := CleanResumeText(string(raw))
	if text == "" {
		return "", fmt.Errorf("no text extracted from resume")
	}
	return text, nil
}
