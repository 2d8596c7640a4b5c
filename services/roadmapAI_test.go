package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeGroq(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("GROQ_API_URL", srv.URL)
	t.Setenv("GROQ_API_KEY", "test-key")
}

func completionBody(content string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return body
}

func TestChatCompletionParsesChoice(t *testing.T) {
	fakeGroq(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody("hello there"))
	})

	content, err := ChatCompletion([]ChatMessage{{Role: "user", Content: "hi"}}, 0.7, false)
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if content != "hello there" {
		t.Errorf("content = %q", content)
	}
}

func TestChatCompletionServerError(t *testing.T) {
	fakeGroq(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := ChatCompletion([]ChatMessage{{Role: "user", Content: "hi"}}, 0.7, false); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestChatCompletionMissingKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	if _, err := ChatCompletion([]ChatMessage{{Role: "user", Content: "hi"}}, 0.7, false); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestExtractSkillsFromAPIResponse(t *testing.T) {
	fakeGroq(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(`{"skills": [{"name": "Go", "category": "programming", "proficiency": 9}]}`))
	})

	got := ExtractSkills("ten years of go")
	if len(got) != 1 || got[0].Name != "Go" {
		t.Fatalf("skills = %+v", got)
	}
	if got[0].Proficiency != 5 {
		t.Errorf("proficiency = %d, want clamped to 5", got[0].Proficiency)
	}
}

func TestExtractSkillsFallsBackOnFailure(t *testing.T) {
	fakeGroq(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	got := ExtractSkills("Experienced with Python, Docker and PostgreSQL in production.")

	names := map[string]bool{}
	for _, s := range got {
		names[s.Name] = true
	}
	for _, want := range []string{"Python", "Docker", "PostgreSQL"} {
		if !names[want] {
			t.Errorf("fallback missed %s in %v", want, got)
		}
	}
}

func TestExtractSkillsFallsBackOnGarbageJSON(t *testing.T) {
	fakeGroq(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody("sorry, I cannot help with that"))
	})

	got := ExtractSkills("I know Java and SQL.")
	names := map[string]bool{}
	for _, s := range got {
		names[s.Name] = true
	}
	if !names["Java"] || !names["SQL"] {
		t.Errorf("fallback skills = %+v", got)
	}
}

func TestExplainSkillGapFallback(t *testing.T) {
	fakeGroq(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	text := ExplainSkillGap("Backend Developer", 75, []string{"Docker", "SQL"})
	if text == "" {
		t.Fatal("empty explanation on fallback")
	}
}

func TestChatReplyFallback(t *testing.T) {
	fakeGroq(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	reply := ChatReply("user context", nil, "what next?")
	if reply == "" {
		t.Fatal("empty chat reply on fallback")
	}
}

func TestCleanJSONBlock(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, c := range cases {
		if got := cleanJSONBlock(c.in); got != c.want {
			t.Errorf("cleanJSONBlock(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
