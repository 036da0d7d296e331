package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendCarriesAuthAndClearsNilSlices(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(w, `{"id":"m1","channel_id":"c1"}`)
	}))
	defer srv.Close()

	r := NewRestWithBaseURL("secret", srv.URL)
	m, err := r.Send(context.Background(), "c1", SendMessage{Content: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.ID != "m1" {
		t.Errorf("message id = %q, want m1", m.ID)
	}
	if gotAuth != "Bot secret" {
		t.Errorf("authorization = %q", gotAuth)
	}
	for _, key := range []string{"embeds", "components", "attachments"} {
		if _, ok := gotBody[key].([]any); !ok {
			t.Errorf("%s should marshal as an array, got %T", key, gotBody[key])
		}
	}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestCreateEmojiSendsDataURI(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/guilds/g1/emojis" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(w, `{"id":"e1","name":"pepe"}`)
	}))
	defer srv.Close()

	r := NewRestWithBaseURL("t", srv.URL)
	mention, err := r.CreateEmoji(context.Background(), "g1", "pepe", []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("create emoji: %v", err)
	}
	if mention != "<:pepe:e1>" {
		t.Errorf("mention = %q", mention)
	}
	if !strings.HasPrefix(gotBody["image"], "data:") || !strings.Contains(gotBody["image"], ";base64,") {
		t.Errorf("image = %q, want a base64 data uri", gotBody["image"])
	}
}

func TestCreateStickerUsesMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("name"); got != "cat" {
			t.Errorf("name = %q", got)
		}
		if got := r.FormValue("tags"); got == "" {
			t.Error("tags must never be empty")
		}
		if _, _, err := r.FormFile("files[0]"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		writeJSON(w, `{"id":"s1","name":"cat"}`)
	}))
	defer srv.Close()

	r := NewRestWithBaseURL("t", srv.URL)
	id, err := r.CreateSticker(context.Background(), "g1", "cat", "a cat", "", []byte{1, 2})
	if err != nil {
		t.Fatalf("create sticker: %v", err)
	}
	if id != "s1" {
		t.Errorf("id = %q, want s1", id)
	}
}

func TestRespondUpdateClearsAttachments(t *testing.T) {
	var gotData map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotData = body.Data
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	r := NewRestWithBaseURL("t", srv.URL)
	i := &Interaction{ID: "i1", Token: "tok"}
	msg := SendMessage{Content: "closed"}
	if err := r.Respond(context.Background(), i, ResponseUpdateMessage, &msg, false); err != nil {
		t.Fatalf("respond: %v", err)
	}
	atts, ok := gotData["attachments"].([]any)
	if !ok {
		t.Fatalf("attachments should marshal as an array, got %T", gotData["attachments"])
	}
	if len(atts) != 0 {
		t.Errorf("expected empty attachment list, got %v", atts)
	}
}

func TestRespondUpdateReplacesAttachmentsWithFiles(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if err := json.Unmarshal([]byte(r.FormValue("payload_json")), &payload); err != nil {
			t.Fatalf("decode payload_json: %v", err)
		}
		if _, _, err := r.FormFile("files[0]"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	r := NewRestWithBaseURL("t", srv.URL)
	i := &Interaction{ID: "i1", Token: "tok"}
	msg := SendMessage{Content: "next item", Files: []File{{Name: "dog.png", Data: []byte{1}}}}
	if err := r.Respond(context.Background(), i, ResponseUpdateMessage, &msg, false); err != nil {
		t.Fatalf("respond: %v", err)
	}
	data, _ := payload["data"].(map[string]any)
	atts, ok := data["attachments"].([]any)
	if !ok || len(atts) != 1 {
		t.Fatalf("attachments = %v, want one entry for the new upload", data["attachments"])
	}
	entry, _ := atts[0].(map[string]any)
	if entry["filename"] != "dog.png" {
		t.Errorf("attachment entry = %v, want filename dog.png", entry)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Missing Permissions"}`))
	}))
	defer srv.Close()

	r := NewRestWithBaseURL("t", srv.URL)
	err := r.Kick(context.Background(), "g1", "u1", "spam")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Message != "Missing Permissions" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestKickSendsAuditReason(t *testing.T) {
	var gotReason string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReason = r.Header.Get("X-Audit-Log-Reason")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	r := NewRestWithBaseURL("t", srv.URL)
	if err := r.Kick(context.Background(), "g1", "u1", "spam"); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if gotReason != "spam" {
		t.Errorf("audit reason = %q, want spam", gotReason)
	}
}
