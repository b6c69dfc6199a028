// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/aria-tui/internal/model"
	"github.com/jeranaias/aria-tui/internal/util"
)

const (
	// idPrefix marks conversation IDs.
	idPrefix = "conv_"

	// summaryLength is the rune budget for auto-generated summaries.
	summaryLength = 50

	// previewLength is the rune budget for list previews.
	previewLength = 80
)

// validID guards filePath against traversal.
var validID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// =============================================================================
// STORED CONVERSATION TYPE
// =============================================================================

// StoredConversation represents a persisted conversation.
type StoredConversation struct {
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []model.Message `json:"messages"`
}

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"`
}

// FromMessages wraps a message list for saving. CreatedAt is taken from the
// first message.
func FromMessages(messages []model.Message) *StoredConversation {
	conv := &StoredConversation{
		Messages: append([]model.Message(nil), messages...),
	}
	if len(messages) > 0 {
		conv.CreatedAt = messages[0].CreatedAt
	}
	return conv
}

// Preview returns the first user message, truncated.
func (c *StoredConversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.IsUser() && !msg.IsEmpty() {
			return msg.Preview(previewLength)
		}
	}
	return ""
}

// MessageCount returns the number of messages in the conversation.
func (c *StoredConversation) MessageCount() int {
	return len(c.Messages)
}

// HasUserMessages reports whether the conversation is worth keeping.
func (c *StoredConversation) HasUserMessages() bool {
	for _, msg := range c.Messages {
		if msg.IsUser() {
			return true
		}
	}
	return false
}

// Meta returns the listing metadata of the conversation.
func (c *StoredConversation) Meta() ConversationMeta {
	return ConversationMeta{
		ID:           c.ID,
		Summary:      c.Summary,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		MessageCount: len(c.Messages),
		Preview:      c.Preview(),
	}
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore handles conversation persistence.
type ConversationStore struct {
	// BaseDir is the directory for storing conversations
	BaseDir string

	// MaxConversations limits stored conversations (0 = unlimited)
	MaxConversations int

	mu sync.Mutex
}

// NewConversationStore creates a store rooted at baseDir, creating it if needed.
func NewConversationStore(baseDir string, maxConversations int) (*ConversationStore, error) {
	if baseDir == "" {
		return nil, errors.New("storage: empty base directory")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &ConversationStore{
		BaseDir:          baseDir,
		MaxConversations: maxConversations,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a conversation and returns its ID.
func (s *ConversationStore) Save(conv *StoredConversation) (string, error) {
	if conv == nil {
		return "", errors.New("storage: nil conversation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if conv.ID == "" {
		conv.ID = NewConversationID()
	}
	if !validID.MatchString(conv.ID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, conv.ID)
	}
	if conv.Summary == "" {
		conv.Summary = generateSummary(conv)
	}

	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode conversation: %w", err)
	}

	if err := util.AtomicWriteFile(s.filePath(conv.ID), data, 0644); err != nil {
		return "", err
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}

	return conv.ID, nil
}

// generateSummary creates a summary from the first user message.
func generateSummary(conv *StoredConversation) string {
	for _, msg := range conv.Messages {
		if msg.IsUser() && !msg.IsEmpty() {
			return msg.Preview(summaryLength)
		}
	}
	return "New chat"
}

// enforceLimit removes the least recently updated conversations over the limit.
// Callers hold s.mu.
func (s *ConversationStore) enforceLimit() {
	metas, err := s.list()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}
	// metas is newest first.
	for _, meta := range metas[s.MaxConversations:] {
		_ = os.Remove(s.filePath(meta.ID))
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by ID.
func (s *ConversationStore) Load(id string) (*StoredConversation, error) {
	if !validID.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var conv StoredConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", id, err)
	}
	return &conv, nil
}

// LoadByIndex loads a conversation by its index in the list (0 = most recent).
func (s *ConversationStore) LoadByIndex(index int) (*StoredConversation, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(metas) {
		return nil, ErrConversationNotFound
	}
	return s.Load(metas[index].ID)
}

// Find resolves ref as a 1-based list position, an exact ID, or a unique
// ID prefix, in that order.
func (s *ConversationStore) Find(ref string) (*StoredConversation, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		return s.LoadByIndex(n - 1)
	}

	metas, err := s.List()
	if err != nil {
		return nil, err
	}

	var match string
	for _, meta := range metas {
		if meta.ID == ref {
			return s.Load(meta.ID)
		}
		if ref != "" && strings.HasPrefix(meta.ID, ref) {
			if match != "" {
				return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, ref)
			}
			match = meta.ID
		}
	}
	if match == "" {
		return nil, ErrConversationNotFound
	}
	return s.Load(match)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved conversations (most recent first).
func (s *ConversationStore) List() ([]ConversationMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list()
}

// Recent returns at most n conversations, most recent first.
func (s *ConversationStore) Recent(n int) ([]ConversationMeta, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(metas) > n {
		metas = metas[:n]
	}
	return metas, nil
}

func (s *ConversationStore) list() ([]ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ConversationMeta{}, nil
		}
		return nil, err
	}

	metas := make([]ConversationMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		conv, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // Skip corrupted files
		}
		metas = append(metas, conv.Meta())
	}

	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search finds conversations whose summary or any message contains query,
// case-insensitively.
func (s *ConversationStore) Search(query string) ([]ConversationMeta, error) {
	all, err := s.List()
	if err != nil || query == "" {
		return all, err
	}

	query = strings.ToLower(query)
	var results []ConversationMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Summary), query) {
			results = append(results, meta)
			continue
		}
		conv, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Text), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by ID.
func (s *ConversationStore) Delete(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// Clear removes all saved conversations and returns how many were removed.
func (s *ConversationStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.BaseDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filePath returns the file path for a conversation ID.
func (s *ConversationStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// ShortID returns the first 12 characters of id, enough to pass to Find.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// NewConversationID creates a unique conversation ID.
func NewConversationID() string {
	return idPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when a conversation doesn't exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrAmbiguousID is returned when a prefix matches several conversations.
	ErrAmbiguousID = errors.New("ambiguous conversation id")

	// ErrInvalidID is returned for IDs that are not safe file names.
	ErrInvalidID = errors.New("invalid conversation id")
)

// =============================================================================
// FORMATTING
// =============================================================================

// FormatList formats conversations as a table for the history command.
func FormatList(metas []ConversationMeta) string {
	if len(metas) == 0 {
		return "No conversations found."
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("#", 4) + util.PadRight("ID", 14) + util.PadRight("Updated", 18) +
		util.PadRight("Msgs", 6) + "Summary\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	for i, m := range metas {
		sb.WriteString(util.PadRight(strconv.Itoa(i+1), 4))
		sb.WriteString(util.PadRight(ShortID(m.ID), 14))
		sb.WriteString(util.PadRight(m.UpdatedAt.Format("2006-01-02 15:04"), 18))
		sb.WriteString(util.PadRight(strconv.Itoa(m.MessageCount), 6))
		sb.WriteString(util.TruncateWidth(m.Summary, 30))
		sb.WriteString("\n")
	}
	return sb.String()
}

// ExportMarkdown exports the conversation as Markdown with sender labels and
// clock times.
func (c *StoredConversation) ExportMarkdown(botName string) string {
	if botName == "" {
		botName = model.SenderBot.DisplayName()
	}

	var sb strings.Builder
	sb.WriteString("# " + c.Summary + "\n\n")
	sb.WriteString("Created: " + c.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range c.Messages {
		label := model.SenderUser.DisplayName()
		if msg.IsBot() {
			label = botName
		}
		sb.WriteString("**" + label + "** (" + msg.Time + "):\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}
