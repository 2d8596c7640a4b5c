package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// ExtractedSkill: навык, извлеченный из резюме
type ExtractedSkill struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency int    `json:"proficiency"`
}

// cleanJSONBlock: модель любит заворачивать JSON в ```-блоки
func cleanJSONBlock(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// ExtractSkills: достает навыки из текста резюме через LLM,
// при любой ошибке откатывается на поиск по словарю
func ExtractSkills(resumeText string) []ExtractedSkill {
	prompt := fmt.Sprintf(`Extract technical and soft skills from this resume text.
Return ONLY a JSON object: {"skills": [{"name": "...", "category": "...", "proficiency": 1-5}]}.
Categories: programming, frameworks, databases, devops, cloud, data, soft.

Resume:
%s`, truncate(resumeText, 6000))

	messages := []ChatMessage{
		{Role: "system", Content: "You are a resume analysis assistant. Respond with valid JSON only."},
		{Role: "user", Content: prompt},
	}

	content, err := ChatCompletion(messages, 0.3, true)
	if err != nil {
		log.Warn().Err(err).Msg("AI skill extraction failed, using keyword fallback")
		return FallbackExtractSkills(resumeText)
	}

	var parsed struct {
		Skills []ExtractedSkill `json:"skills"`
	}
	if err := json.Unmarshal([]byte(cleanJSONBlock(content)), &parsed); err != nil {
		log.Warn().Err(err).Msg("AI returned unparseable skills JSON, using keyword fallback")
		return FallbackExtractSkills(resumeText)
	}

	out := make([]ExtractedSkill, 0, len(parsed.Skills))
	for _, s := range parsed.Skills {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		if s.Proficiency < 1 {
			s.Proficiency = 1
		}
		if s.Proficiency > 5 {
			s.Proficiency = 5
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return FallbackExtractSkills(resumeText)
	}
	return out
}

var commonSkills = []ExtractedSkill{
	{Name: "Python", Category: "programming"},
	{Name: "JavaScript", Category: "programming"},
	{Name: "TypeScript", Category: "programming"},
	{Name: "Java", Category: "programming"},
	{Name: "Go", Category: "programming"},
	{Name: "C++", Category: "programming"},
	{Name: "SQL", Category: "databases"},
	{Name: "PostgreSQL", Category: "databases"},
	{Name: "MongoDB", Category: "databases"},
	{Name: "Redis", Category: "databases"},
	{Name: "React", Category: "frameworks"},
	{Name: "Node.js", Category: "frameworks"},
	{Name: "Django", Category: "frameworks"},
	{Name: "FastAPI", Category: "frameworks"},
	{Name: "Spring", Category: "frameworks"},
	{Name: "HTML", Category: "frameworks"},
	{Name: "CSS", Category: "frameworks"},
	{Name: "Docker", Category: "devops"},
	{Name: "Kubernetes", Category: "devops"},
	{Name: "Git", Category: "devops"},
	{Name: "CI/CD", Category: "devops"},
	{Name: "Linux", Category: "devops"},
	{Name: "AWS", Category: "cloud"},
	{Name: "Azure", Category: "cloud"},
	{Name: "GCP", Category: "cloud"},
	{Name: "Machine Learning", Category: "data"},
	{Name: "Data Analysis", Category: "data"},
	{Name: "Pandas", Category: "data"},
	{Name: "TensorFlow", Category: "data"},
	{Name: "Communication", Category: "soft"},
	{Name: "Leadership", Category: "soft"},
	{Name: "Teamwork", Category: "soft"},
	{Name: "Problem Solving", Category: "soft"},
}

// FallbackExtractSkills: детерминированный поиск навыков по словарю
func FallbackExtractSkills(resumeText string) []ExtractedSkill {
	lower := strings.ToLower(resumeText)
	var found []ExtractedSkill
	for _, s := range commonSkills {
		if strings.Contains(lower, strings.ToLower(s.Name)) {
			s.Proficiency = 3
			found = append(found, s)
		}
	}
	return found
}

// ExplainSkillGap: короткое объяснение результата gap-анализа
func ExplainSkillGap(roleTitle string, matchPercentage float64, missing []string) string {
	prompt := fmt.Sprintf(
		"A user targets the role %q and matches %.0f%% of required skills. Missing skills: %s. "+
			"In 3-4 sentences explain what to focus on first and why. Be encouraging and specific.",
		roleTitle, matchPercentage, strings.Join(missing, ", "))

	messages := []ChatMessage{
		{Role: "system", Content: "You are a career mentor."},
		{Role: "user", Content: prompt},
	}

	content, err := ChatCompletion(messages, 0.7, false)
	if err != nil {
		log.Warn().Err(err).Msg("AI gap explanation failed, using canned text")
		if len(missing) == 0 {
			return fmt.Sprintf("You already cover the required skills for %s. Keep practicing to deepen your expertise.", roleTitle)
		}
		return fmt.Sprintf("You match %.0f%% of the %s requirements. Start with %s — it carries the most weight in your gap, then work through the rest of the plan module by module.",
			matchPercentage, roleTitle, missing[0])
	}
	return strings.TrimSpace(content)
}

// RoadmapTitle: короткий заголовок плана, при сбое AI остается
// канонический "<Role> Roadmap"
func RoadmapTitle(roleTitle, experienceLevel string) string {
	fallback := fmt.Sprintf("%s Roadmap", roleTitle)

	level := experienceLevel
	if level == "" {
		level = "beginner"
	}
	prompt := fmt.Sprintf(
		"Suggest a short motivating title (max 6 words, no quotes) for a %s learning roadmap for a %s-level user. Respond with the title only.",
		roleTitle, level)

	messages := []ChatMessage{
		{Role: "system", Content: "You are a concise copywriter."},
		{Role: "user", Content: prompt},
	}

	content, err := ChatCompletion(messages, 0.9, false)
	if err != nil {
		log.Warn().Err(err).Msg("AI roadmap title failed, using canned title")
		return fallback
	}
	title := strings.Trim(strings.TrimSpace(content), `"`)
	if title == "" || len(title) > 80 {
		return fallback
	}
	return title
}

// ModuleSummary: мотивационное резюме по завершенному модулю
func ModuleSummary(moduleTitle string, skills []string, completed, total int) string {
	prompt := fmt.Sprintf(
		"The user finished the learning module %q covering %s, completing %d of %d resources. "+
			"Write 2-3 encouraging sentences summarizing what they learned and what comes next.",
		moduleTitle, strings.Join(skills, ", "), completed, total)

	messages := []ChatMessage{
		{Role: "system", Content: "You are a supportive learning coach."},
		{Role: "user", Content: prompt},
	}

	content, err := ChatCompletion(messages, 0.8, false)
	if err != nil {
		log.Warn().Err(err).Msg("AI module summary failed, using canned text")
		return fmt.Sprintf("Module %q is done: %d of %d resources completed. The skills %s are now part of your toolkit — the next module is unlocked.",
			moduleTitle, completed, total, strings.Join(skills, ", "))
	}
	return strings.TrimSpace(content)
}

// WeeklySummary: мотивационная сводка недели для аналитики
func WeeklySummary(name string, resolvedThisWeek int, hoursSpent float64, streak int) string {
	prompt := fmt.Sprintf(
		"User %s resolved %d learning resources this week, spent %.1f hours learning and has a %d-day streak. "+
			"Write a 2 sentence motivational weekly summary.",
		name, resolvedThisWeek, hoursSpent, streak)

	messages := []ChatMessage{
		{Role: "system", Content: "You are a supportive learning coach."},
		{Role: "user", Content: prompt},
	}

	content, err := ChatCompletion(messages, 0.8, false)
	if err != nil {
		log.Warn().Err(err).Msg("AI weekly summary failed, using canned text")
		if resolvedThisWeek == 0 {
			return "No resources resolved this week. Open your roadmap and knock out the next unlocked item — small steps count."
		}
		return fmt.Sprintf("%d resources resolved and %.1f hours invested this week — keep the %d-day streak alive!",
			resolvedThisWeek, hoursSpent, streak)
	}
	return strings.TrimSpace(content)
}

// ChatReply: ответ ассистента с контекстом пользователя и историей
func ChatReply(userContext string, history []ChatMessage, message string) string {
	system := "You are PathForge Assistant, a helpful learning mentor inside a personalized learning roadmap app. " +
		"Answer questions about the user's roadmap, skills and career growth. Keep answers short and practical.\n\n" +
		"User context:\n" + userContext

	messages := []ChatMessage{{Role: "system", Content: system}}
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{Role: "user", Content: message})

	content, err := ChatCompletion(messages, 0.7, false)
	if err != nil {
		log.Warn().Err(err).Msg("AI chat failed, using canned reply")
		return "I'm having trouble reaching the assistant right now. Your roadmap and progress are safe — please try again in a minute."
	}
	return strings.TrimSpace(content)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
