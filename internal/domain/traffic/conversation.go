// Package traffic inspects outbound chat-completion requests posted from the browser.
//
// Bodies are validated against a strict model before anything is read from them. A body that does
// not match is dropped, never escalated: the upstream format changes without notice.
package traffic

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// ErrSchemaValidation is returned when a body does not match the conversation model
var ErrSchemaValidation = errors.New("conversation body does not match schema")

// ErrNoMessages is returned by LastUserMessage on a conversation without messages
var ErrNoMessages = errors.New("conversation has no messages")

// Unknown keys are allowed everywhere; only the listed ones are required.

type Author struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Role string   `json:"role"`
}

type MessageContent struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	ContentType string   `json:"content_type"`
	Parts       []string `json:"parts"`
}

type SerializationMetadata struct {
	_                   struct{} `json:"-" additionalProperties:"true"`
	CustomSymbolOffsets []any    `json:"custom_symbol_offsets"`
}

type MessageMetadata struct {
	_                      struct{}              `json:"-" additionalProperties:"true"`
	SelectedGithubRepos    []any                 `json:"selected_github_repos"`
	SelectedAllGithubRepos bool                  `json:"selected_all_github_repos"`
	SerializationMetadata  SerializationMetadata `json:"serialization_metadata"`
}

type Message struct {
	_          struct{}        `json:"-" additionalProperties:"true"`
	ID         string          `json:"id"`
	Author     Author          `json:"author"`
	CreateTime float64         `json:"create_time"`
	Content    MessageContent  `json:"content"`
	Metadata   MessageMetadata `json:"metadata"`
}

type ConversationMode struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Kind string   `json:"kind"`
}

type ClientContextualInfo struct {
	_               struct{} `json:"-" additionalProperties:"true"`
	IsDarkMode      bool     `json:"is_dark_mode"`
	TimeSinceLoaded float64  `json:"time_since_loaded"`
	PageHeight      float64  `json:"page_height"`
	PageWidth       float64  `json:"page_width"`
	PixelRatio      float64  `json:"pixel_ratio"`
	ScreenHeight    float64  `json:"screen_height"`
	ScreenWidth     float64  `json:"screen_width"`
	AppName         string   `json:"app_name"`
}

// Conversation is a chat-completion request body
type Conversation struct {
	_                                struct{}             `json:"-" additionalProperties:"true"`
	Action                           string               `json:"action"`
	Messages                         []Message            `json:"messages"`
	ConversationID                   string               `json:"conversation_id"`
	ParentMessageID                  string               `json:"parent_message_id"`
	Model                            string               `json:"model"`
	TimezoneOffsetMin                float64              `json:"timezone_offset_min"`
	Timezone                         string               `json:"timezone"`
	ConversationMode                 ConversationMode     `json:"conversation_mode"`
	EnableMessageFollowups           bool                 `json:"enable_message_followups"`
	SystemHints                      []any                `json:"system_hints"`
	SupportsBuffering                bool                 `json:"supports_buffering"`
	SupportedEncodings               []string             `json:"supported_encodings"`
	ClientContextualInfo             ClientContextualInfo `json:"client_contextual_info"`
	ParagenCotSummaryDisplayOverride string               `json:"paragen_cot_summary_display_override"`
	ForceParallelSwitch              string               `json:"force_parallel_switch"`
}

var (
	conversationType = reflect.TypeOf(Conversation{})

	// huma's validator keeps per-call state
	validatorMu    sync.Mutex
	modelValidator = huma.NewModelValidator()
)

// ParseConversation validates body against the conversation model and decodes it
func ParseConversation(body []byte) (*Conversation, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaValidation, err)
	}

	validatorMu.Lock()
	errs := modelValidator.Validate(conversationType, raw)
	validatorMu.Unlock()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrSchemaValidation, errors.Join(errs...))
	}

	var conv Conversation
	if err := json.Unmarshal(body, &conv); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaValidation, err)
	}
	return &conv, nil
}

// LastUserMessage returns the parts of the final message joined by ", "
func (c *Conversation) LastUserMessage() (string, error) {
	if len(c.Messages) == 0 {
		return "", ErrNoMessages
	}
	last := c.Messages[len(c.Messages)-1]
	return strings.Join(last.Content.Parts, ", "), nil
}
