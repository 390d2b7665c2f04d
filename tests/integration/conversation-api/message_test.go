package conversationapi_test

import (
	"net/http"
	"testing"
)

// TestMessageAPI_AppendAndList tests the message endpoints end to end
func TestMessageAPI_AppendAndList(t *testing.T) {
	skipIfNoAPI(t)

	id := createConversation(t, map[string]interface{}{
		"seed_messages": []string{"What is the capital of France?"},
	})

	t.Run("appends with contiguous sequences", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/v1/conversations/"+id+"/messages", map[string]interface{}{
			"role":    "assistant",
			"content": "The capital of France is Paris.",
		})
		assertStatus(t, resp, http.StatusOK, body)

		msg := parseJSON(t, body)
		if msg["sequence"] != 1.0 {
			t.Errorf("Expected sequence 1 after the seed message, got %v", msg["sequence"])
		}
		if msg["object"] != "conversation.message" {
			t.Errorf("Expected object 'conversation.message', got %v", msg["object"])
		}
	})

	t.Run("lists messages in order", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/v1/conversations/"+id+"/messages", nil)
		assertStatus(t, resp, http.StatusOK, body)

		list := parseJSON(t, body)
		data, _ := list["data"].([]interface{})
		if len(data) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(data))
		}
		for i, raw := range data {
			msg := raw.(map[string]interface{})
			if msg["sequence"] != float64(i) {
				t.Errorf("Expected sequence %d at position %d, got %v", i, i, msg["sequence"])
			}
		}
	})

	t.Run("rejects an unsupported role", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/v1/conversations/"+id+"/messages", map[string]interface{}{
			"role":    "narrator",
			"content": "meanwhile",
		})
		assertStatus(t, resp, http.StatusBadRequest, body)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodPost, "/v1/conversations/"+id+"/messages", map[string]interface{}{
			"role":    "user",
			"content": "",
		})
		assertStatus(t, resp, http.StatusBadRequest, body)
	})

	t.Run("lists empty for an unknown conversation", func(t *testing.T) {
		resp, body := makeRequest(t, http.MethodGet, "/v1/conversations/conv_0000000000000000/messages", nil)
		assertStatus(t, resp, http.StatusOK, body)

		list := parseJSON(t, body)
		data, ok := list["data"].([]interface{})
		if !ok {
			t.Fatalf("Expected data array, got %s", string(body))
		}
		if len(data) != 0 {
			t.Errorf("Expected no messages, got %d", len(data))
		}
	})
}
