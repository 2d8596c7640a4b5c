package services

import (
	"context"
	"os"
	"regexp"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([\w-]{11})`),
	regexp.MustCompile(`youtu\.be/([\w-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([\w-]{11})`),
}

// ExtractYouTubeID: достает id видео из ссылки, пустая строка если это не YouTube
func ExtractYouTubeID(rawURL string) string {
	for _, re := range youtubeIDPatterns {
		if m := re.FindStringSubmatch(rawURL); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

// CheckResourceAvailable: для YouTube ссылок проверяет через Data API, что
// видео существует. Не-YouTube ссылки и любые сбои API считаются доступными,
// чтобы проверка никогда не блокировала каталог.
func CheckResourceAvailable(rawURL string) bool {
	videoID := ExtractYouTubeID(rawURL)
	if videoID == "" {
		return true
	}

	apiKey := os.Getenv("YOUTUBE_API_KEY")
	if apiKey == "" {
		return true
	}

	svc, err := youtube.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		log.Warn().Err(err).Msg("youtube client init failed, assuming resource available")
		return true
	}

	resp, err := svc.Videos.List([]string{"id"}).Id(videoID).Do()
	if err != nil {
		log.Warn().Err(err).Msg("youtube lookup failed, assuming resource available")
		return true
	}

	return len(resp.Items) > 0
}
