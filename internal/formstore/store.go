// Package formstore implements the persisted, resumable store of
// multi-step form data. It owns FormSessionState exclusively: the chat
// controller and this store reconcile only through explicit push/pull
// calls against the backend, never shared state.
package formstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/etouchhq/insure-chat/internal/api"
	"github.com/etouchhq/insure-chat/internal/domain"
)

// SyncBackend is the subset of the backend API used for reconciliation.
// *api.Client satisfies it.
type SyncBackend interface {
	SyncFormData(ctx context.Context, req *api.SyncFormDataRequest) (*api.SyncFormDataResponse, error)
	SessionData(ctx context.Context, sessionID string) (*api.SessionDataResponse, error)
}

// PersonalDetailsPatch is a shallow-merge update for the personal section.
// Nil fields are left untouched.
type PersonalDetailsPatch struct {
	FullName     *string
	DateOfBirth  *string
	Age          *string
	Gender       *string
	MobileNumber *string
	Email        *string
	PinCode      *string
	AnnualIncome *string
	TobaccoUser  *bool
}

// QuoteDetailsPatch is a shallow-merge update for the quote section.
type QuoteDetailsPatch struct {
	SumAssured             *string
	PolicyTermYears        *string
	PremiumPayingTermYears *string
	Frequency              *string
	SelectedVariant        *string
}

// PaymentDetailsPatch is a shallow-merge update for the payment section.
type PaymentDetailsPatch struct {
	PaymentMethod *string
	Status        *domain.PaymentStatus
	PaymentID     *string
	TransactionID *string
	PolicyNumber  *string
}

// Store holds the resumable form session state. Every mutator recomputes
// the affected section's completion entry synchronously, so derived data
// is never stale, and persists the result.
type Store struct {
	backend   SyncBackend
	persister Persister
	logger    *slog.Logger

	mu    sync.Mutex
	state domain.FormSessionState
}

// New creates a store, restoring any previously persisted state. A nil
// persister disables persistence; a nil logger falls back to the default.
func New(backend SyncBackend, persister Persister, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		backend:   backend,
		persister: persister,
		logger:    logger,
		state:     domain.EmptyFormSessionState(),
	}
	if persister != nil {
		saved, err := persister.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("restore form session state: %w", err)
		}
		if saved != nil {
			s.state = *saved
		}
	}
	return s, nil
}

// State returns a copy of the current form session state.
func (s *Store) State() domain.FormSessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateCopyLocked()
}

// SetSessionID records the backend-assigned session id.
func (s *Store) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SessionID = id
	s.persistLocked()
}

// SetSessionState records the backend session state and moves the wizard
// step that corresponds to it.
func (s *Store) SetSessionState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SessionState = state
	s.state.CurrentStep = domain.StepForState(state)
	s.persistLocked()
}

// SetCurrentStep moves the wizard to an explicit step.
func (s *Store) SetCurrentStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.CurrentStep = step
	s.persistLocked()
}

// UpdatePersonalDetails merges the patch into the personal section and
// recomputes that section's completion entry.
func (s *Store) UpdatePersonalDetails(patch PersonalDetailsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &s.state.PersonalDetails
	applyString(&d.FullName, patch.FullName)
	applyString(&d.DateOfBirth, patch.DateOfBirth)
	applyString(&d.Age, patch.Age)
	applyString(&d.Gender, patch.Gender)
	applyString(&d.MobileNumber, patch.MobileNumber)
	applyString(&d.Email, patch.Email)
	applyString(&d.PinCode, patch.PinCode)
	applyString(&d.AnnualIncome, patch.AnnualIncome)
	if patch.TobaccoUser != nil {
		v := *patch.TobaccoUser
		d.TobaccoUser = &v
	}

	s.state.FormCompletion.PersonalDetails = d.Completion()
	s.persistLocked()
}

// UpdateQuoteDetails merges the patch into the quote section and
// recomputes that section's completion entry.
func (s *Store) UpdateQuoteDetails(patch QuoteDetailsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &s.state.QuoteDetails
	applyString(&d.SumAssured, patch.SumAssured)
	applyString(&d.PolicyTermYears, patch.PolicyTermYears)
	applyString(&d.PremiumPayingTermYears, patch.PremiumPayingTermYears)
	applyString(&d.Frequency, patch.Frequency)
	applyString(&d.SelectedVariant, patch.SelectedVariant)

	s.state.FormCompletion.InsuranceRequirements = d.Completion()
	s.persistLocked()
}

// UpdateRiderSelections replaces the rider list. Rider selection is always
// complete: declining every rider is a valid choice.
func (s *Store) UpdateRiderSelections(riders []domain.RiderSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.RiderSelections = append([]domain.RiderSelection(nil), riders...)
	s.state.FormCompletion.RiderSelection = domain.RiderCompletion()
	s.persistLocked()
}

// UpdatePaymentDetails merges the patch into the payment section and
// recomputes that section's completion entry.
func (s *Store) UpdatePaymentDetails(patch PaymentDetailsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &s.state.PaymentDetails
	applyString(&d.PaymentMethod, patch.PaymentMethod)
	if patch.Status != nil {
		d.Status = *patch.Status
	}
	applyString(&d.PaymentID, patch.PaymentID)
	applyString(&d.TransactionID, patch.TransactionID)
	applyString(&d.PolicyNumber, patch.PolicyNumber)

	s.state.FormCompletion.PaymentDetails = d.Completion()
	s.persistLocked()
}

// SyncWithBackend pushes the personal/quote/payment sections to the
// backend. A backend-returned form_completion wholesale-replaces the local
// one: the backend is authoritative over completion semantics when it
// chooses to respond. Failures are logged and swallowed; this is an
// advisory push, local state is never rolled back.
func (s *Store) SyncWithBackend(ctx context.Context) {
	s.mu.Lock()
	if s.state.SessionID == "" {
		s.mu.Unlock()
		return
	}
	req := &api.SyncFormDataRequest{
		SessionID: s.state.SessionID,
		FormData: api.SyncFormData{
			PersonalDetails: s.state.PersonalDetails,
			QuoteDetails:    s.state.QuoteDetails,
			PaymentDetails:  s.state.PaymentDetails,
		},
	}
	s.mu.Unlock()

	resp, err := s.backend.SyncFormData(ctx, req)
	if err != nil {
		s.logger.Warn("form data sync failed", "session_id", req.SessionID, "error", err)
		return
	}

	if resp.Success && resp.UpdatedData != nil && resp.UpdatedData.FormCompletion != nil {
		s.mu.Lock()
		s.state.FormCompletion = *resp.UpdatedData.FormCompletion
		s.persistLocked()
		s.mu.Unlock()
	}
}

// LoadFromBackend pulls the authoritative form state for a session and
// replaces the local sections wholesale. Sections absent in the response
// become empty records, never merged with stale local data. Failures
// are logged and swallowed, keeping local state.
func (s *Store) LoadFromBackend(ctx context.Context, sessionID string) {
	resp, err := s.backend.SessionData(ctx, sessionID)
	if err != nil {
		s.logger.Warn("form data load failed", "session_id", sessionID, "error", err)
		return
	}
	if !resp.Success || resp.FormData == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SessionID = sessionID
	s.state.SessionState = resp.CurrentState
	s.state.PersonalDetails = domain.PersonalDetails{}
	s.state.QuoteDetails = domain.QuoteDetails{}
	s.state.PaymentDetails = domain.PaymentDetails{}
	s.state.FormCompletion = domain.FormCompletion{}
	if resp.FormData.PersonalDetails != nil {
		s.state.PersonalDetails = *resp.FormData.PersonalDetails
	}
	if resp.FormData.QuoteDetails != nil {
		s.state.QuoteDetails = *resp.FormData.QuoteDetails
	}
	if resp.FormData.PaymentDetails != nil {
		s.state.PaymentDetails = *resp.FormData.PaymentDetails
	}
	if resp.FormData.FormCompletion != nil {
		s.state.FormCompletion = *resp.FormData.FormCompletion
	}
	s.persistLocked()
}

// ClearSession resets everything to the empty initial state, synchronously.
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = domain.EmptyFormSessionState()
	if s.persister != nil {
		if err := s.persister.Clear(context.Background()); err != nil {
			s.logger.Warn("failed to clear persisted form state", "error", err)
		}
	}
}

func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	state := s.stateCopyLocked()
	if err := s.persister.Save(context.Background(), &state); err != nil {
		s.logger.Warn("failed to persist form state", "error", err)
	}
}

func (s *Store) stateCopyLocked() domain.FormSessionState {
	out := s.state
	out.RiderSelections = append([]domain.RiderSelection(nil), s.state.RiderSelections...)
	if s.state.PersonalDetails.TobaccoUser != nil {
		v := *s.state.PersonalDetails.TobaccoUser
		out.PersonalDetails.TobaccoUser = &v
	}
	return out
}

func applyString[T ~string](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
