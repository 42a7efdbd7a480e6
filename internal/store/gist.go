package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wondash/server/internal/models"
)

const gistFileName = "dashboard_config.json"

// GistStore mirrors the configuration to a single file inside one GitHub
// gist, so the same dashboard state follows the user across machines.
type GistStore struct {
	client  *http.Client
	baseURL string
	token   string
	gistID  string
}

func NewGistStore(token, gistID string) *GistStore {
	return &GistStore{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.github.com",
		token:   token,
		gistID:  gistID,
	}
}

// SetBaseURL overrides the GitHub API endpoint, for tests.
func (s *GistStore) SetBaseURL(u string) {
	s.baseURL = u
}

type gistPayload struct {
	Files map[string]struct {
		Content string `json:"content"`
	} `json:"files"`
}

func (s *GistStore) Load() (*models.DashboardConfig, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/gists/%s", s.baseURL, s.gistID), nil)
	if err != nil {
		return nil, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gist request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gist API error (status %d): %s", resp.StatusCode, string(body))
	}

	var payload gistPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to parse gist response: %w", err)
	}

	file, ok := payload.Files[gistFileName]
	if !ok || file.Content == "" {
		return nil, nil
	}

	var cfg models.DashboardConfig
	if err := json.Unmarshal([]byte(file.Content), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse mirrored config: %w", err)
	}
	return &cfg, nil
}

func (s *GistStore) Save(cfg *models.DashboardConfig) error {
	content, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	body, err := json.Marshal(map[string]interface{}{
		"files": map[string]interface{}{
			gistFileName: map[string]string{"content": string(content)},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/gists/%s", s.baseURL, s.gistID), bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gist request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gist API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (s *GistStore) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}
