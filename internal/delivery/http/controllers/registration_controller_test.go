package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistrationService implements domain.RegistrationService for handler tests.
type fakeRegistrationService struct {
	registerErr error
	lastEventID string
	lastUserID  string
}

func (f *fakeRegistrationService) Register(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.lastEventID = eventID
	f.lastUserID = userID
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &domain.Registration{ID: "reg-created", UserID: userID, EventID: eventID}, nil
}

func TestRegistrationController_RegisterForEvent(t *testing.T) {
	tests := []struct {
		name           string
		eventID        string
		noUserContext  bool
		fakeErr        error
		wantStatus     int
		wantErrCode    string
		wantBodySubstr string
	}{
		{
			name:       "success",
			eventID:    testEventID,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "invalid id",
			eventID:        "not-a-uuid",
			wantStatus:     http.StatusBadRequest,
			wantErrCode:    helpers.ErrCodeBadRequest,
			wantBodySubstr: "invalid eventID",
		},
		{
			name:           "no identity",
			eventID:        testEventID,
			noUserContext:  true,
			wantStatus:     http.StatusUnauthorized,
			wantErrCode:    helpers.ErrCodeUnauthorized,
			wantBodySubstr: "not authenticated",
		},
		{
			name:           "event not found",
			eventID:        testEventID,
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantErrCode:    helpers.ErrCodeNotFound,
			wantBodySubstr: "event not found",
		},
		{
			name:           "event full",
			eventID:        testEventID,
			fakeErr:        domain.ErrEventFull,
			wantStatus:     http.StatusBadRequest,
			wantErrCode:    helpers.ErrCodeEventFull,
			wantBodySubstr: "event is full",
		},
		{
			name:           "already registered",
			eventID:        testEventID,
			fakeErr:        domain.ErrAlreadyRegistered,
			wantStatus:     http.StatusBadRequest,
			wantErrCode:    helpers.ErrCodeAlreadyRegistered,
			wantBodySubstr: "already registered",
		},
		{
			name:           "service error",
			eventID:        testEventID,
			fakeErr:        errors.New("db down"),
			wantStatus:     http.StatusInternalServerError,
			wantErrCode:    helpers.ErrCodeInternalError,
			wantBodySubstr: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRegistrationService{registerErr: tt.fakeErr}
			ctrl := NewRegistrationController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/events/"+tt.eventID+"/registrations", nil)
			req.SetPathValue("eventID", tt.eventID)
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), testUserID))
			}
			rr := httptest.NewRecorder()

			ctrl.RegisterForEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				assert.Equal(t, tt.eventID, fake.lastEventID)
				assert.Equal(t, testUserID, fake.lastUserID)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var reg domain.Registration
				require.NoError(t, json.Unmarshal(dataBytes, &reg))
				assert.Equal(t, "reg-created", reg.ID)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
			assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
		})
	}
}
