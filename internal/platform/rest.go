package platform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultAPIBase = "https://discord.com/api/v10"
	cdnBase        = "https://cdn.discordapp.com"

	flagEphemeral = 1 << 6
)

// APIError is a non-2xx answer from the platform API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("platform api: status %d", e.Status)
}

// Emoji is a guild custom emoji.
type Emoji struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Animated bool   `json:"animated"`
}

// Mention renders the emoji usable in message content.
func (e Emoji) Mention() string {
	if e.Animated {
		return "<a:" + e.Name + ":" + e.ID + ">"
	}
	return "<:" + e.Name + ":" + e.ID + ">"
}

// Sticker is a guild sticker.
type Sticker struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	FormatType  int    `json:"format_type"`
}

// Rest is the platform REST client. It implements session.AssetCreator.
type Rest struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewRest creates a REST client authenticated with the bot token.
func NewRest(token string) *Rest {
	return &Rest{
		baseURL: defaultAPIBase,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// NewRestWithBaseURL creates a client against a non-default endpoint.
// Used by tests.
func NewRestWithBaseURL(token, baseURL string) *Rest {
	r := NewRest(token)
	r.baseURL = baseURL
	return r
}

func (r *Rest) do(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	var buf io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+r.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode platform response: %w", err)
	}
	return nil
}

// doMultipart sends payload as the payload_json part plus one part per file.
func (r *Rest) doMultipart(ctx context.Context, method, path string, payload any, files []File, extra map[string]string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := mw.WriteField("payload_json", string(blob)); err != nil {
			return err
		}
	}
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	for i, f := range files {
		part, err := mw.CreateFormFile("files["+strconv.Itoa(i)+"]", f.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(f.Data); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+r.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := r.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

// Me fetches the bot's own user.
func (r *Rest) Me(ctx context.Context) (*User, error) {
	var u User
	if err := r.do(ctx, http.MethodGet, "/users/@me", nil, &u, nil); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches a user by id.
func (r *Rest) GetUser(ctx context.Context, userID string) (*User, error) {
	var u User
	if err := r.do(ctx, http.MethodGet, "/users/"+userID, nil, &u, nil); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetMessage fetches a single message.
func (r *Rest) GetMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	var m Message
	if err := r.do(ctx, http.MethodGet, "/channels/"+channelID+"/messages/"+messageID, nil, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

// Send posts a message to a channel. Files, when present, switch the
// request to multipart.
func (r *Rest) Send(ctx context.Context, channelID string, msg SendMessage) (*Message, error) {
	var m Message
	msg.normalize()
	path := "/channels/" + channelID + "/messages"
	if len(msg.Files) > 0 {
		if err := r.doMultipart(ctx, http.MethodPost, path, msg, msg.Files, nil, &m); err != nil {
			return nil, err
		}
		return &m, nil
	}
	if err := r.do(ctx, http.MethodPost, path, msg, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

// Edit replaces the content, embeds and components of a message.
func (r *Rest) Edit(ctx context.Context, channelID, messageID string, msg SendMessage) (*Message, error) {
	var m Message
	msg.normalize()
	path := "/channels/" + channelID + "/messages/" + messageID
	if len(msg.Files) > 0 {
		if err := r.doMultipart(ctx, http.MethodPatch, path, msg, msg.Files, nil, &m); err != nil {
			return nil, err
		}
		return &m, nil
	}
	if err := r.do(ctx, http.MethodPatch, path, msg, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

// DM opens (or reuses) a direct-message channel and sends msg into it.
func (r *Rest) DM(ctx context.Context, userID string, msg SendMessage) (*Message, error) {
	var ch struct {
		ID string `json:"id"`
	}
	if err := r.do(ctx, http.MethodPost, "/users/@me/channels", map[string]string{"recipient_id": userID}, &ch, nil); err != nil {
		return nil, err
	}
	return r.Send(ctx, ch.ID, msg)
}

func auditHeader(reason string) map[string]string {
	if reason == "" {
		return nil
	}
	return map[string]string{"X-Audit-Log-Reason": reason}
}

// Kick removes a member from a guild.
func (r *Rest) Kick(ctx context.Context, guildID, userID, reason string) error {
	return r.do(ctx, http.MethodDelete, "/guilds/"+guildID+"/members/"+userID, nil, nil, auditHeader(reason))
}

// Ban bans a member from a guild.
func (r *Rest) Ban(ctx context.Context, guildID, userID, reason string) error {
	return r.do(ctx, http.MethodPut, "/guilds/"+guildID+"/bans/"+userID, struct{}{}, nil, auditHeader(reason))
}

// Unban lifts a ban by user id.
func (r *Rest) Unban(ctx context.Context, guildID, userID string) error {
	return r.do(ctx, http.MethodDelete, "/guilds/"+guildID+"/bans/"+userID, nil, nil, nil)
}

// ListEmojis returns the guild's custom emojis.
func (r *Rest) ListEmojis(ctx context.Context, guildID string) ([]Emoji, error) {
	var out []Emoji
	if err := r.do(ctx, http.MethodGet, "/guilds/"+guildID+"/emojis", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteEmoji removes a custom emoji.
func (r *Rest) DeleteEmoji(ctx context.Context, guildID, emojiID string) error {
	return r.do(ctx, http.MethodDelete, "/guilds/"+guildID+"/emojis/"+emojiID, nil, nil, nil)
}

// ListStickers returns the guild's stickers.
func (r *Rest) ListStickers(ctx context.Context, guildID string) ([]Sticker, error) {
	var out []Sticker
	if err := r.do(ctx, http.MethodGet, "/guilds/"+guildID+"/stickers", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSticker removes a sticker.
func (r *Rest) DeleteSticker(ctx context.Context, guildID, stickerID string) error {
	return r.do(ctx, http.MethodDelete, "/guilds/"+guildID+"/stickers/"+stickerID, nil, nil, nil)
}

// CreateEmoji uploads image as a custom emoji in scope (the guild) and
// returns its chat mention. Satisfies session.AssetCreator.
func (r *Rest) CreateEmoji(ctx context.Context, scope, name string, image []byte) (string, error) {
	body := map[string]string{
		"name":  name,
		"image": "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image),
	}
	var e Emoji
	if err := r.do(ctx, http.MethodPost, "/guilds/"+scope+"/emojis", body, &e, nil); err != nil {
		return "", err
	}
	return e.Mention(), nil
}

// CreateSticker uploads image as a guild sticker and returns the sticker
// id. Satisfies session.AssetCreator. The platform requires a non-empty
// tags value, so a default emoji hint is substituted when none is given.
func (r *Rest) CreateSticker(ctx context.Context, scope, name, description, emojiHint string, image []byte) (string, error) {
	if emojiHint == "" {
		emojiHint = "🙂"
	}
	fields := map[string]string{
		"name":        name,
		"description": description,
		"tags":        emojiHint,
	}
	var s Sticker
	file := File{Name: "sticker.png", Data: image}
	if err := r.doMultipart(ctx, http.MethodPost, "/guilds/"+scope+"/stickers", nil, []File{file}, fields, &s); err != nil {
		return "", err
	}
	return s.ID, nil
}

// Respond answers an interaction. kind is one of the Response* constants;
// msg may be nil for a bare acknowledgement.
func (r *Rest) Respond(ctx context.Context, i *Interaction, kind int, msg *SendMessage, ephemeral bool) error {
	data := map[string]any{}
	if msg != nil {
		msg.normalize()
		data["content"] = msg.Content
		data["embeds"] = msg.Embeds
		data["components"] = msg.Components
		// Update responses only touch the fields present in data, so the
		// attachment list must always be sent: new uploads replace old ones
		// and an empty list clears them.
		atts := msg.Attachments
		for n, f := range msg.Files {
			atts = append(atts, Attachment{ID: strconv.Itoa(n), Filename: f.Name})
		}
		data["attachments"] = atts
	}
	if ephemeral {
		data["flags"] = flagEphemeral
	}
	body := map[string]any{"type": kind, "data": data}
	path := "/interactions/" + i.ID + "/" + i.Token + "/callback"

	if msg != nil && len(msg.Files) > 0 {
		return r.doMultipart(ctx, http.MethodPost, path, body, msg.Files, nil, nil)
	}
	return r.do(ctx, http.MethodPost, path, body, nil, nil)
}

// RespondModal opens a modal in response to a component interaction.
func (r *Rest) RespondModal(ctx context.Context, i *Interaction, m Modal) error {
	rows := make([]Component, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		rows = append(rows, Component{Type: ComponentActionRow, Components: []Component{{
			Type:        ComponentTextInput,
			CustomID:    in.CustomID,
			Label:       in.Label,
			Style:       in.Style,
			Placeholder: in.Placeholder,
			MaxLength:   in.MaxLength,
			Required:    in.Required,
		}}})
	}
	body := map[string]any{
		"type": ResponseModal,
		"data": map[string]any{
			"custom_id":  m.CustomID,
			"title":      m.Title,
			"components": rows,
		},
	}
	return r.do(ctx, http.MethodPost, "/interactions/"+i.ID+"/"+i.Token+"/callback", body, nil, nil)
}

// InteractionReply fetches the original response message of an
// interaction, so it can be used as a rendering surface later.
func (r *Rest) InteractionReply(ctx context.Context, appID string, i *Interaction) (*Message, error) {
	var m Message
	if err := r.do(ctx, http.MethodGet, "/webhooks/"+appID+"/"+i.Token+"/messages/@original", nil, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

// FollowUp sends a follow-up message for an already-acknowledged
// interaction.
func (r *Rest) FollowUp(ctx context.Context, appID string, i *Interaction, content string, ephemeral bool) error {
	body := map[string]any{"content": content}
	if ephemeral {
		body["flags"] = flagEphemeral
	}
	return r.do(ctx, http.MethodPost, "/webhooks/"+appID+"/"+i.Token, body, nil, nil)
}

// Download fetches raw bytes from a URL, capped at 10 MiB.
func (r *Rest) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

// Guild is a partial guild entry from the bot's own guild list.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MyGuilds lists the guilds the bot is a member of.
func (r *Rest) MyGuilds(ctx context.Context) ([]Guild, error) {
	var out []Guild
	if err := r.do(ctx, http.MethodGet, "/users/@me/guilds", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMember fetches a guild member, or an APIError with status 404 when the
// user is not in the guild.
func (r *Rest) GetMember(ctx context.Context, guildID, userID string) (*Member, error) {
	var m Member
	if err := r.do(ctx, http.MethodGet, "/guilds/"+guildID+"/members/"+userID, nil, &m, nil); err != nil {
		return nil, err
	}
	return &m, nil
}

// RegisterCommands bulk-overwrites the application's global slash commands.
func (r *Rest) RegisterCommands(ctx context.Context, appID string, cmds []CommandSpec) error {
	return r.do(ctx, http.MethodPut, "/applications/"+appID+"/commands", cmds, nil, nil)
}

// CommandSpec declares one slash command for registration.
type CommandSpec struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Options     []CommandOptionSpec `json:"options,omitempty"`
}

// Slash-command option types.
const (
	OptionString = 3
	OptionUser   = 6
)

// CommandOptionSpec declares one slash-command option.
type CommandOptionSpec struct {
	Type        int    `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}
