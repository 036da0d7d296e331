// Package platform implements the chat-platform collaborator: domain types,
// the REST client used for messaging, moderation and asset creation, and the
// websocket gateway that delivers events.
package platform

import (
	"strconv"
	"time"
)

// Snowflake id epoch (2015-01-01T00:00:00Z) in milliseconds.
const idEpochMillis = 1420070400000

// IDTime extracts the creation time embedded in a snowflake id.
func IDTime(id string) time.Time {
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(v>>22) + idEpochMillis)
}

// User is a platform account.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	GlobalName    string `json:"global_name,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
	Banner        string `json:"banner,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
	CreatedAtUnix int64  `json:"-"`
}

// DisplayName returns the user's preferred display name.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Mention renders the user as a chat mention.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// AvatarURL returns the user's avatar image, or the default avatar when the
// user has none.
func (u User) AvatarURL() string {
	if u.Avatar == "" {
		return cdnBase + "/embed/avatars/0.png"
	}
	return cdnBase + "/avatars/" + u.ID + "/" + u.Avatar + ".png"
}

// Member is a user within a guild.
type Member struct {
	User        User     `json:"user"`
	Nick        string   `json:"nick,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions string   `json:"permissions,omitempty"`
	JoinedAt    string   `json:"joined_at,omitempty"`
}

// Permission bits used by the bot.
const (
	PermKickMembers   uint64 = 1 << 1
	PermBanMembers    uint64 = 1 << 2
	PermAdministrator uint64 = 1 << 3
	PermManageAssets  uint64 = 1 << 30
)

// HasPermission reports whether the member's resolved permission bitfield
// includes bit. Administrators pass every check. The bitfield is only
// populated on interaction payloads; it is empty on plain messages.
func (m *Member) HasPermission(bit uint64) bool {
	if m == nil || m.Permissions == "" {
		return false
	}
	v, err := strconv.ParseUint(m.Permissions, 10, 64)
	if err != nil {
		return false
	}
	if v&PermAdministrator != 0 {
		return true
	}
	return v&bit != 0
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size,omitempty"`
}

// EmbedMedia is an image or thumbnail inside an embed.
type EmbedMedia struct {
	URL string `json:"url,omitempty"`
}

// EmbedFooter is the footer line of an embed.
type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedField is one name/value pair in an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a rich message block.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Image       *EmbedMedia  `json:"image,omitempty"`
	Thumbnail   *EmbedMedia  `json:"thumbnail,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// MessageRef points at another message (a reply target).
type MessageRef struct {
	MessageID string `json:"message_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

// Message is a chat message.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	GuildID     string       `json:"guild_id,omitempty"`
	Content     string       `json:"content"`
	Author      User         `json:"author"`
	Member      *Member      `json:"member,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Embeds      []Embed      `json:"embeds,omitempty"`
	Reference   *MessageRef  `json:"message_reference,omitempty"`
}

// Button styles on the wire.
const (
	ButtonPrimary   = 1
	ButtonSecondary = 2
	ButtonSuccess   = 3
	ButtonDanger    = 4
)

// Component types on the wire.
const (
	ComponentActionRow = 1
	ComponentButton    = 2
	ComponentTextInput = 4
)

// Component is a message component: an action row, a button, or (inside
// modal submits) a text input carrying its submitted value.
type Component struct {
	Type        int         `json:"type"`
	CustomID    string      `json:"custom_id,omitempty"`
	Label       string      `json:"label,omitempty"`
	Style       int         `json:"style,omitempty"`
	Disabled    bool        `json:"disabled,omitempty"`
	Value       string      `json:"value,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	MaxLength   int         `json:"max_length,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Components  []Component `json:"components,omitempty"`
}

// Row wraps buttons into an action row.
func Row(buttons ...Component) Component {
	return Component{Type: ComponentActionRow, Components: buttons}
}

// Btn builds a button component.
func Btn(customID, label string, style int, disabled bool) Component {
	return Component{Type: ComponentButton, CustomID: customID, Label: label, Style: style, Disabled: disabled}
}

// File is an upload attached to an outgoing message.
type File struct {
	Name string
	Data []byte
}

// SendMessage carries everything an outgoing message send or edit needs.
// Embeds, Components and Attachments marshal even when empty so edits can
// clear them.
type SendMessage struct {
	Content     string       `json:"content"`
	Embeds      []Embed      `json:"embeds"`
	Components  []Component  `json:"components"`
	Attachments []Attachment `json:"attachments"`
	Reference   *MessageRef  `json:"message_reference,omitempty"`
	Files       []File       `json:"-"`
}

// normalize replaces nil slices so they marshal as empty arrays.
func (m *SendMessage) normalize() {
	if m.Embeds == nil {
		m.Embeds = []Embed{}
	}
	if m.Components == nil {
		m.Components = []Component{}
	}
	if m.Attachments == nil {
		m.Attachments = []Attachment{}
	}
}

// Interaction types on the wire.
const (
	InteractionPing        = 1
	InteractionCommand     = 2
	InteractionComponent   = 3
	InteractionModalSubmit = 5
)

// Interaction response types on the wire.
const (
	ResponsePong          = 1
	ResponseMessage       = 4
	ResponseUpdateMessage = 7
	ResponseModal         = 9
)

// CommandOption is one argument of an invoked slash command.
type CommandOption struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// InteractionData is the payload of a command invocation, component click
// or modal submit.
type InteractionData struct {
	Name       string          `json:"name,omitempty"`
	CustomID   string          `json:"custom_id,omitempty"`
	Options    []CommandOption `json:"options,omitempty"`
	Components []Component     `json:"components,omitempty"`
}

// Interaction is an inbound interaction event.
type Interaction struct {
	ID        string          `json:"id"`
	Type      int             `json:"type"`
	Token     string          `json:"token"`
	GuildID   string          `json:"guild_id,omitempty"`
	ChannelID string          `json:"channel_id,omitempty"`
	Member    *Member         `json:"member,omitempty"`
	User      *User           `json:"user,omitempty"`
	Message   *Message        `json:"message,omitempty"`
	Data      InteractionData `json:"data"`
}

// ModalValue returns the submitted value of a modal text input by custom id.
func (i *Interaction) ModalValue(customID string) string {
	for _, row := range i.Data.Components {
		for _, c := range row.Components {
			if c.CustomID == customID {
				return c.Value
			}
		}
	}
	return ""
}

// Actor returns the user who triggered the interaction.
func (i *Interaction) Actor() User {
	if i.Member != nil {
		return i.Member.User
	}
	if i.User != nil {
		return *i.User
	}
	return User{}
}

// Option returns a named command option value as a string.
func (i *Interaction) Option(name string) string {
	for _, o := range i.Data.Options {
		if o.Name == name {
			if s, ok := o.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}

// TextInput is a modal text field definition.
type TextInput struct {
	Type        int    `json:"type"` // always 4
	CustomID    string `json:"custom_id"`
	Label       string `json:"label"`
	Style       int    `json:"style"`
	Placeholder string `json:"placeholder,omitempty"`
	MaxLength   int    `json:"max_length,omitempty"`
	Required    bool   `json:"required"`
}

// Modal is a popup form shown in response to a component click.
type Modal struct {
	CustomID string `json:"custom_id"`
	Title    string `json:"title"`
	Inputs   []TextInput
}

// Ready is the gateway session-established event.
type Ready struct {
	User      User   `json:"user"`
	SessionID string `json:"session_id"`
}
