package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carvalue/internal/extractor"
	"carvalue/internal/model"
	"carvalue/internal/repository"
)

// Fixed assistant texts
const (
	GreetingMessage = "Hi! I'm your AI car value assistant. To estimate your car's value, I need to know:\n\n" +
		"- Make (e.g., Toyota, Honda)\n" +
		"- Model (e.g., Camry, Civic)\n" +
		"- Year (e.g., 2020)\n" +
		"- Mileage (e.g., 50000)\n" +
		"- Condition (excellent, good, fair, or poor)\n\n" +
		"You can tell me all at once or one at a time. What car would you like me to value?"
	GeneratingMessage  = "Great! I have all the details I need. Generating your car valuation..."
	ChatFailureMessage = "I'm sorry, there was an error generating your car valuation. Please try again."
)

// QuickPrompt is a canned utterance offered to new users
type QuickPrompt struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// QuickPrompts are the suggestions shown under the chat input
var QuickPrompts = []QuickPrompt{
	{Label: "Toyota Innova", Text: "Toyota Innova 2024, 50000 km, good condition"},
	{Label: "Hyundai Creta", Text: "Hyundai Creta 2024, excellent condition"},
	{Label: "Help", Text: "What details do you need for a car valuation?"},
}

// Turn events passed to a TurnCallback
const (
	EventUserMessage = "user_message"
	EventStatus      = "status"
	EventChunk       = "chunk"
	EventMessage     = "message"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions
	ErrSessionNotFound = repository.ErrSessionNotFound
	// ErrTurnInProgress is returned when a session is still answering
	ErrTurnInProgress = errors.New("a message is already being processed")
	// ErrEmptyMessage is returned for blank utterances
	ErrEmptyMessage = errors.New("message is empty")
)

// TurnCallback is called for streaming turn events
type TurnCallback func(event string, data any) error

// ChunkEvent carries one piece of a streamed valuation
type ChunkEvent struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

// Merge overlays the non-empty fields of extracted onto previous
func Merge(previous, extracted model.VehicleAttributes) model.VehicleAttributes {
	out := previous
	if extracted.Make != "" {
		out.Make = extracted.Make
	}
	if extracted.Model != "" {
		out.Model = extracted.Model
	}
	if extracted.Year != "" {
		out.Year = extracted.Year
	}
	if extracted.Mileage != "" {
		out.Mileage = extracted.Mileage
	}
	if extracted.Condition != "" {
		out.Condition = extracted.Condition
	}
	if extracted.AdditionalInfo != "" {
		out.AdditionalInfo = extracted.AdditionalInfo
	}
	return out
}

// MissingFields lists the required fields not yet collected, in asking order
func MissingFields(v model.VehicleAttributes) []string {
	missing := []string{}
	for _, f := range model.RequiredFields {
		if v.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsComplete reports whether every required field is present
func IsComplete(v model.VehicleAttributes) bool {
	return len(MissingFields(v)) == 0
}

// IncompleteReply is the assistant's answer while fields are still missing
func IncompleteReply(v model.VehicleAttributes) string {
	missing := MissingFields(v)

	var collected []string
	for _, f := range model.RequiredFields {
		if val := v.Get(f); val != "" {
			collected = append(collected, fmt.Sprintf("%s: %s", strings.ToUpper(f[:1])+f[1:], val))
		}
	}

	if len(collected) > 0 {
		return fmt.Sprintf("Thanks for providing these details:\n\n%s\n\nI still need the following to estimate your car's value: %s.",
			strings.Join(collected, "\n"), strings.Join(missing, ", "))
	}
	return fmt.Sprintf("I need some details about your car to provide a valuation. Please tell me the %s of your car.",
		strings.Join(missing, ", "))
}

// ConversationConfig tunes the chat behaviour
type ConversationConfig struct {
	ThinkingDelay   time.Duration
	DefaultDarkMode bool
}

// ConversationService runs chat sessions that collect vehicle attributes
// turn by turn and request a valuation once the record is complete
type ConversationService struct {
	store      *repository.SessionStore
	valuations *ValuationService
	filler     FieldFiller // optional
	cfg        ConversationConfig
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewConversationService creates a new conversation service
func NewConversationService(store *repository.SessionStore, valuations *ValuationService, cfg ConversationConfig, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		store:      store,
		valuations: valuations,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// WithFieldFiller enables model-assisted extraction of missing fields
func (s *ConversationService) WithFieldFiller(f FieldFiller) *ConversationService {
	s.filler = f
	return s
}

// CreateSession starts a conversation with the greeting message
func (s *ConversationService) CreateSession() *model.ChatSession {
	now := s.now()
	session := &model.ChatSession{
		ID:        s.newID(),
		Messages:  []model.Message{s.message(model.RoleAssistant, GreetingMessage)},
		DarkMode:  s.cfg.DefaultDarkMode,
		CreatedAt: now,
	}
	s.store.Put(session)
	s.logger.Debug("chat session created", zap.String("session_id", session.ID))
	return session
}

// GetSession returns a snapshot of a session
func (s *ConversationService) GetSession(id string) (*model.ChatSession, error) {
	session, err := s.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return session, nil
}

// DeleteSession ends a conversation
func (s *ConversationService) DeleteSession(id string) error {
	if _, err := s.store.Get(id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	s.store.Delete(id)
	return nil
}

// SetDarkMode stores the session's theme preference
func (s *ConversationService) SetDarkMode(id string, dark bool) (*model.ChatSession, error) {
	session, err := s.store.Update(id, func(cs *model.ChatSession) error {
		cs.DarkMode = dark
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set theme for session %s: %w", id, err)
	}
	return session, nil
}

// Snapshot renders a session for API responses
func (s *ConversationService) Snapshot(session *model.ChatSession) *model.ChatSessionResponse {
	return &model.ChatSessionResponse{
		SessionID: session.ID,
		Messages:  session.Messages,
		Collected: session.Collected,
		Missing:   MissingFields(session.Collected),
		DarkMode:  session.DarkMode,
		CreatedAt: session.CreatedAt,
	}
}

// HandleTurn processes one user utterance. callback may be nil; when set it
// receives the user message, the status message, valuation chunks and the
// final assistant message as they happen.
func (s *ConversationService) HandleTurn(ctx context.Context, sessionID, utterance string, callback TurnCallback) (*model.ChatTurnResponse, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, ErrEmptyMessage
	}
	emit := s.emitter(sessionID, callback)

	userMsg := s.message(model.RoleUser, utterance)
	session, err := s.store.Update(sessionID, func(cs *model.ChatSession) error {
		if cs.Processing {
			return ErrTurnInProgress
		}
		cs.Processing = true
		cs.Messages = append(cs.Messages, userMsg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	released := false
	defer func() {
		if !released {
			s.release(sessionID, nil)
		}
	}()

	emit(EventUserMessage, userMsg)

	record := Merge(session.Collected, s.extract(ctx, utterance, session.Collected))

	if err := s.think(ctx); err != nil {
		return nil, err
	}

	resp := &model.ChatTurnResponse{
		SessionID: sessionID,
		Messages:  []model.Message{userMsg},
	}

	if !IsComplete(record) {
		reply := s.message(model.RoleAssistant, IncompleteReply(record))
		released = true
		s.release(sessionID, func(cs *model.ChatSession) {
			cs.Collected = record
			cs.Messages = append(cs.Messages, reply)
		})
		emit(EventMessage, reply)

		resp.Messages = append(resp.Messages, reply)
		resp.Collected = record
		resp.Missing = MissingFields(record)
		return resp, nil
	}

	status := s.message(model.RoleAssistant, GeneratingMessage)
	status.Pending = true
	if _, err := s.store.Update(sessionID, func(cs *model.ChatSession) error {
		cs.Collected = record
		cs.Messages = append(cs.Messages, status)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	emit(EventStatus, status)

	// the raw last utterance travels as additional info
	vehicle := record
	vehicle.AdditionalInfo = utterance

	var valuation model.Valuation
	if callback != nil {
		valuation = s.valuations.EstimateStream(ctx, vehicle, SourceChat, func(chunk string) error {
			emit(EventChunk, ChunkEvent{MessageID: status.ID, Content: chunk})
			return nil
		})
	} else {
		valuation = s.valuations.Estimate(ctx, vehicle, SourceChat)
	}

	result := model.Message{
		ID:        status.ID,
		Role:      model.RoleAssistant,
		Content:   valuation.Text,
		Timestamp: s.now(),
	}
	if !valuation.OK {
		result.Content = ChatFailureMessage
	}

	released = true
	s.release(sessionID, func(cs *model.ChatSession) {
		replaced := false
		for i := range cs.Messages {
			if cs.Messages[i].ID == status.ID {
				cs.Messages[i] = result
				replaced = true
				break
			}
		}
		if !replaced {
			cs.Messages = append(cs.Messages, result)
		}
		cs.Collected = model.VehicleAttributes{}
	})
	emit(EventMessage, result)

	resp.Messages = append(resp.Messages, result)
	resp.Missing = MissingFields(model.VehicleAttributes{})
	resp.Complete = true
	resp.Valuation = &valuation
	return resp, nil
}

// extract runs the keyword extractor and, when configured, asks the model
// for whatever is still missing after merging
func (s *ConversationService) extract(ctx context.Context, utterance string, previous model.VehicleAttributes) model.VehicleAttributes {
	currentYear := s.now().Year()
	extracted := extractor.Extract(utterance, currentYear)
	if s.filler == nil {
		return extracted
	}

	missing := MissingFields(Merge(previous, extracted))
	if len(missing) == 0 {
		return extracted
	}

	filled, err := s.filler.Fill(ctx, utterance, missing, currentYear)
	if err != nil {
		s.logger.Warn("AI extraction failed, using keyword results", zap.Error(err))
		return extracted
	}
	// keyword results win over the model
	return Merge(filled, extracted)
}

func (s *ConversationService) think(ctx context.Context) error {
	if s.cfg.ThinkingDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.cfg.ThinkingDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// release clears the processing flag, applying fn first
func (s *ConversationService) release(sessionID string, fn func(cs *model.ChatSession)) {
	_, err := s.store.Update(sessionID, func(cs *model.ChatSession) error {
		if fn != nil {
			fn(cs)
		}
		cs.Processing = false
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to release session", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *ConversationService) emitter(sessionID string, callback TurnCallback) func(event string, data any) {
	return func(event string, data any) {
		if callback == nil {
			return
		}
		if err := callback(event, data); err != nil {
			s.logger.Debug("turn callback failed",
				zap.String("session_id", sessionID),
				zap.String("event", event),
				zap.Error(err),
			)
		}
	}
}

func (s *ConversationService) message(role model.Role, content string) model.Message {
	return model.Message{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
}
