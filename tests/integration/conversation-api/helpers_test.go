package conversationapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL    string
	httpClient *http.Client
	testUserID string
)

func init() {
	baseURL = os.Getenv("TEST_CONVERSATION_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8084"
	}

	httpClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	// A fresh identity per run keeps reruns against a shared database isolated.
	testUserID = fmt.Sprintf("integration-%d", time.Now().UnixNano())
}

// skipIfNoAPI skips the test if the API is not reachable
func skipIfNoAPI(t *testing.T) {
	t.Helper()
	resp, err := httpClient.Get(baseURL + "/healthz")
	if err != nil {
		t.Skipf("API not reachable at %s: %v", baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("API health check failed: %d", resp.StatusCode)
	}
}

// makeRequest is a helper for making HTTP requests
func makeRequest(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", testUserID)

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	return resp, respBody
}

// assertStatus checks that the response has the expected status code
func assertStatus(t *testing.T, resp *http.Response, expected int, body []byte) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(body))
	}
}

// parseJSON unmarshals JSON response into a map
func parseJSON(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("Failed to parse JSON response: %v. Body: %s", err, string(body))
	}
	return result
}

// createConversation creates a conversation and returns its public ID
func createConversation(t *testing.T, payload map[string]interface{}) string {
	t.Helper()
	resp, body := makeRequest(t, http.MethodPost, "/v1/conversations", payload)
	assertStatus(t, resp, http.StatusOK, body)
	created := parseJSON(t, body)
	id, ok := created["id"].(string)
	if !ok || id == "" {
		t.Fatalf("Expected conversation id in response, got %s", string(body))
	}
	return id
}
