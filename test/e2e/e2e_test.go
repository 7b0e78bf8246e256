//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stemsi/aiready-backend/internal/model"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

var (
	baseURL      string
	surveySecret string
	sessionToken string
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// The hashed form cannot be replayed, so the plaintext must be supplied.
	surveySecret = os.Getenv("E2E_SURVEY_SECRET")
	if surveySecret == "" {
		surveySecret = os.Getenv("SURVEY_SECRET")
	}
	if surveySecret == "" {
		fmt.Println("E2E_SURVEY_SECRET or SURVEY_SECRET must be set")
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func TestE2EFlow(t *testing.T) {
	// Step 1: Open a session
	t.Run("OpenSession", func(t *testing.T) {
		resp, err := post("/sessions", nil, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Token string          `json:"token"`
				State model.GateState `json:"state"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		sessionToken = body.Data.Token
		if sessionToken == "" {
			t.Fatal("token missing")
		}
		if body.Data.State != model.GateUnset {
			t.Fatalf("expected state unset, got %q", body.Data.State)
		}
	})

	// Step 2: Survey is locked before the gate opens
	t.Run("SurveyLocked", func(t *testing.T) {
		resp, err := get("/survey", sessionToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", resp.StatusCode, readBody(resp))
		}
	})

	// Step 3: Wrong password leaves the session rejected
	t.Run("WrongPassword", func(t *testing.T) {
		resp, err := post("/sessions/me/unlock", map[string]string{"password": surveySecret + "-nope"}, sessionToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", resp.StatusCode, readBody(resp))
		}
		if state := stateOf(t, resp); state != model.GateRejected {
			t.Fatalf("expected state rejected, got %q", state)
		}
	})

	// Step 4: Correct password unlocks
	t.Run("Unlock", func(t *testing.T) {
		resp, err := post("/sessions/me/unlock", map[string]string{"password": surveySecret}, sessionToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		if state := stateOf(t, resp); state != model.GateAccepted {
			t.Fatalf("expected state accepted, got %q", state)
		}
	})

	// Step 5: Fetch the catalog
	var catalog model.SurveyView
	t.Run("GetSurvey", func(t *testing.T) {
		resp, err := get("/survey", sessionToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data model.SurveyView `json:"data"`
		}
		decodeJSON(t, resp, &body)
		catalog = body.Data
		if len(catalog.Questions) != 7 {
			t.Fatalf("expected 7 questions, got %d", len(catalog.Questions))
		}
	})

	// Step 6: Submit the best choice for every question (listed first)
	t.Run("Submit", func(t *testing.T) {
		if len(catalog.Questions) == 0 {
			t.Skip("catalog not loaded")
		}

		answers := model.AnswerSet{}
		for _, q := range catalog.Questions {
			answers[q.ID] = q.Choices[0].Label
		}

		reqBody := model.SubmitSurveyRequest{
			Name:         "E2E Respondent",
			Organization: "E2E Org",
			Industry:     catalog.Industries[0],
			JobLevel:     catalog.JobLevels[0],
			Revenue:      catalog.RevenueBands[0],
			Answers:      answers,
		}
		resp, err := post("/survey/submissions", reqBody, sessionToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data model.SurveyResult `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.ScoreText != "E2E Respondent, your AI readiness score is: 100.00/100" {
			t.Errorf("unexpected score text %q", body.Data.ScoreText)
		}
		if body.Data.Tier != 1 {
			t.Errorf("expected tier 1, got %d", body.Data.Tier)
		}
	})

	// Step 7: Incomplete answer sets are refused
	t.Run("SubmitIncomplete", func(t *testing.T) {
		reqBody := model.SubmitSurveyRequest{
			Name:     "E2E Respondent",
			Industry: catalog.Industries[0],
			JobLevel: catalog.JobLevels[0],
			Revenue:  catalog.RevenueBands[0],
			Answers:  model.AnswerSet{"Q1": "Not Considered"},
		}
		resp, err := post("/survey/submissions", reqBody, sessionToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", resp.StatusCode, readBody(resp))
		}
	})
}

// Helpers

func stateOf(t *testing.T, resp *http.Response) model.GateState {
	var body struct {
		Data struct {
			State model.GateState `json:"state"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &body)
	return body.Data.State
}

func post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest("POST", baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func get(path string, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
