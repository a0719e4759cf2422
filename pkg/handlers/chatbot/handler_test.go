package chatbot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/de-tools/pricelist-atlas/pkg/models/api"
	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReplier struct {
	mock.Mock
}

func (m *mockReplier) Configured() bool {
	return m.Called().Bool(0)
}

func (m *mockReplier) Reply(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func TestPostChat(t *testing.T) {
	validBody := `{"messages":[{"role":"user","content":"hi"},{"role":"bot","content":"hello"},{"role":"user","content":"price?"}]}`
	conversation := []domain.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "bot", Content: "hello"},
		{Role: "user", Content: "price?"},
	}

	tests := []struct {
		name            string
		body            string
		setupMock       func(*mockReplier)
		expectedStatus  int
		expectedReply   string
		expectedFailure int
	}{
		{
			name: "successful reply",
			body: validBody,
			setupMock: func(m *mockReplier) {
				m.On("Configured").Return(true)
				m.On("Reply", mock.Anything, conversation).Return("It costs $0.000004.", nil)
			},
			expectedStatus: http.StatusOK,
			expectedReply:  "It costs $0.000004.",
		},
		{
			name: "not configured is checked before the body",
			body: `not json`,
			setupMock: func(m *mockReplier) {
				m.On("Configured").Return(false)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedReply:  ReplyNotConfigured,
		},
		{
			name: "empty messages",
			body: `{"messages":[]}`,
			setupMock: func(m *mockReplier) {
				m.On("Configured").Return(true)
			},
			expectedStatus: http.StatusBadRequest,
			expectedReply:  ReplyInvalidRequest,
		},
		{
			name: "malformed body",
			body: `{"messages":"hi"}`,
			setupMock: func(m *mockReplier) {
				m.On("Configured").Return(true)
			},
			expectedStatus: http.StatusBadRequest,
			expectedReply:  ReplyInvalidRequest,
		},
		{
			name: "upstream failure",
			body: validBody,
			setupMock: func(m *mockReplier) {
				m.On("Configured").Return(true)
				m.On("Reply", mock.Anything, conversation).Return("", errors.New("quota exceeded"))
			},
			expectedStatus:  http.StatusInternalServerError,
			expectedReply:   ReplyUpstreamError,
			expectedFailure: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replier := new(mockReplier)
			tt.setupMock(replier)

			failures := 0
			handler := NewHandler(replier, func() { failures++ })

			req := httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.PostChat(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var resp api.ChatResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.expectedReply, resp.Reply)
			assert.Equal(t, tt.expectedFailure, failures)
			replier.AssertExpectations(t)
		})
	}
}

func TestPostChat_NilReplier(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil, nil).PostChat(rec, httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"reply":"Gemini API key not configured."}`, rec.Body.String())
}
