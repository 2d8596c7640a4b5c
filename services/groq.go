package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const DefaultGroqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

const GroqModel = "llama-3.3-70b-versatile"

// GroqEndpoint: адрес API, переопределяется через GROQ_API_URL
func GroqEndpoint() string {
	if url := os.Getenv("GROQ_API_URL"); url != "" {
		return url
	}
	return DefaultGroqEndpoint
}

// Структура сообщения для ChatCompletion
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Структура запроса для ChatCompletion
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

// Структура ответа от ChatCompletion
type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// ChatCompletion: один синхронный вызов Groq API
func ChatCompletion(messages []ChatMessage, temperature float64, jsonMode bool) (string, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GROQ_API_KEY is not set")
	}

	requestData := ChatCompletionRequest{
		Model:       GroqModel,
		Messages:    messages,
		Temperature: temperature,
	}
	if jsonMode {
		requestData.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to serialize request: %w", err)
	}

	req, err := http.NewRequest("POST", GroqEndpoint(), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("AI API returned status %d: %s", resp.StatusCode, string(body))
	}

	var completionResp ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return "", fmt.Errorf("failed to decode API response: %w", err)
	}

	if len(completionResp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned by the API")
	}

	return completionResp.Choices[0].Message.Content, nil
}
