// Package stubagent is a scripted stand-in for the conversational
// insurance agent. It walks every session through the same sales
// pipeline (onboarding, quote, riders, payment, receipt) so the client
// can be developed and tested without the real agent running.
package stubagent

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/etouchhq/insure-chat/internal/api"
	"github.com/etouchhq/insure-chat/internal/domain"
)

// pipeline is the scripted state sequence every session advances through.
var pipeline = []string{
	"onboarding",
	"quote_generation",
	"addon_riders",
	"payment_initiated",
	"document_collection",
	"policy_issued",
}

type session struct {
	id       string
	state    string
	personal domain.PersonalDetails
	quote    domain.QuoteDetails
	payment  domain.PaymentDetails
	history  []api.HistoryEntry
}

// Server holds scripted sessions in memory.
type Server struct {
	logger    *slog.Logger
	uploadDir string

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a stub agent. Uploaded documents land under uploadDir.
func New(uploadDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:    logger,
		uploadDir: uploadDir,
		sessions:  make(map[string]*session),
	}
}

// Router builds the HTTP surface of the stub agent.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat/session/start", s.handleStartSession)
		r.Post("/chat/message", s.handleMessage)
		r.Get("/chat/session/{sessionID}", s.handleSessionInfo)
		r.Get("/chat/session/{sessionID}/history", s.handleHistory)
		r.Post("/chat/session/{sessionID}/reset", s.handleReset)
		r.Get("/chat/health", s.handleHealth)
		r.Post("/documents/upload", s.handleUpload)
		r.Post("/agent/sync-form-data", s.handleSyncFormData)
		r.Get("/agent/session-data/{sessionID}", s.handleSessionData)
	})
	return r
}

func (s *Server) handleStartSession(w http.ResponseWriter, _ *http.Request) {
	sess := &session{
		id:    uuid.NewString(),
		state: pipeline[0],
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("session started", "session_id", sess.id)
	writeJSON(w, http.StatusOK, api.StartSessionResponse{
		SessionID:      sess.id,
		InitialMessage: "Hello! I'm your insurance advisor. Let's start with a few details about you.",
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req api.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[req.SessionID]
	if !ok {
		// A message without a known session opens one implicitly, the
		// way the real agent does on first contact.
		sess = &session{id: uuid.NewString(), state: pipeline[0]}
		s.sessions[sess.id] = sess
	}

	now := time.Now().UTC().Format(time.RFC3339)
	sess.history = append(sess.history, api.HistoryEntry{
		Role: "user", Message: req.Message, Timestamp: now,
	})

	s.applyTurn(sess, &req)
	reply := s.replyFor(sess)
	sess.history = append(sess.history, api.HistoryEntry{
		Role: "assistant", Message: reply, Timestamp: now,
	})

	writeJSON(w, http.StatusOK, api.TurnResponse{
		Message:        reply,
		SessionID:      sess.id,
		CurrentState:   sess.state,
		Actions:        actionsFor(sess.state),
		DataCollection: dataCollectionFor(sess),
		Timestamp:      now,
	})
}

// applyTurn merges turn data into the session and advances the pipeline.
func (s *Server) applyTurn(sess *session, req *api.TurnRequest) {
	if len(req.FormData) > 0 {
		mergeForm(&sess.personal, req.FormData)
	}
	if v, ok := req.ActionData["action"]; ok && fmt.Sprint(v) == "select_variant" {
		if variant, ok := req.ActionData["variant"]; ok {
			sess.quote.SelectedVariant = fmt.Sprint(variant)
		}
	}
	if strings.Contains(strings.ToLower(req.Message), "proceeding to payment") {
		sess.payment.Status = domain.PaymentProcessing
	}
	if next := nextState(sess.state); next != sess.state {
		sess.state = next
	}
	if sess.state == "policy_issued" {
		sess.payment.Status = domain.PaymentSuccess
		if sess.payment.PaymentID == "" {
			sess.payment.PaymentID = "pay_" + uuid.NewString()[:8]
		}
	}
}

func (s *Server) replyFor(sess *session) string {
	switch sess.state {
	case "onboarding":
		return "Thanks. I still need a few personal details before we can generate quotes."
	case "quote_generation":
		return "Based on your profile, here are the plan variants I recommend."
	case "addon_riders":
		return "Would you like to add any rider benefits to your plan?"
	case "payment_initiated":
		return "Great choice. Please complete the payment to issue the policy."
	case "document_collection":
		return "Payment received. Please upload your KYC documents."
	case "policy_issued":
		return "Congratulations! Your policy has been issued."
	default:
		return "How can I help you with your insurance needs?"
	}
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, domain.SessionInfo{
		SessionID:             sess.id,
		CurrentState:          sess.state,
		CreatedAt:             now,
		UpdatedAt:             now,
		CustomerDataCollected: dataCollectionFor(sess).Collected,
		ConversationTurns:     len(sess.history) / 2,
		SelectedVariant:       sess.quote.SelectedVariant,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.HistoryResponse{
		SessionID: sess.id,
		History:   append([]api.HistoryEntry(nil), sess.history...),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.logger.Info("session reset", "session_id", id)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:        "healthy",
		ChatService:   "up",
		OllamaService: "up",
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	docType := r.FormValue("document_type")
	sessionID := r.FormValue("session_id")
	if docType == "" || sessionID == "" {
		writeError(w, http.StatusBadRequest, "document_type and session_id are required")
		return
	}

	dir := filepath.Join(s.uploadDir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	dest := filepath.Join(dir, docType+"_"+filepath.Base(header.Filename))
	out, err := os.Create(dest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	s.logger.Info("document stored", "session_id", sessionID, "type", docType, "path", dest)
	writeJSON(w, http.StatusOK, api.UploadResponse{FilePath: dest})
}

func (s *Server) handleSyncFormData(w http.ResponseWriter, r *http.Request) {
	var req api.SyncFormDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[req.SessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.personal = req.FormData.PersonalDetails
	sess.quote = req.FormData.QuoteDetails
	sess.payment = req.FormData.PaymentDetails

	completion := domain.FormCompletion{
		PersonalDetails:       sess.personal.Completion(),
		InsuranceRequirements: sess.quote.Completion(),
		RiderSelection:        domain.RiderCompletion(),
		PaymentDetails:        sess.payment.Completion(),
	}
	resp := api.SyncFormDataResponse{Success: true}
	resp.UpdatedData = &struct {
		FormCompletion *domain.FormCompletion `json:"form_completion,omitempty"`
	}{FormCompletion: &completion}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionData(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	completion := domain.FormCompletion{
		PersonalDetails:       sess.personal.Completion(),
		InsuranceRequirements: sess.quote.Completion(),
		RiderSelection:        domain.RiderCompletion(),
		PaymentDetails:        sess.payment.Completion(),
	}
	resp := api.SessionDataResponse{Success: true, CurrentState: sess.state}
	resp.FormData = &struct {
		PersonalDetails *domain.PersonalDetails `json:"personalDetails,omitempty"`
		QuoteDetails    *domain.QuoteDetails    `json:"quoteDetails,omitempty"`
		PaymentDetails  *domain.PaymentDetails  `json:"paymentDetails,omitempty"`
		FormCompletion  *domain.FormCompletion  `json:"formCompletion,omitempty"`
	}{
		PersonalDetails: &sess.personal,
		QuoteDetails:    &sess.quote,
		PaymentDetails:  &sess.payment,
		FormCompletion:  &completion,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func nextState(current string) string {
	for i, state := range pipeline {
		if state == current && i+1 < len(pipeline) {
			return pipeline[i+1]
		}
	}
	return current
}

func mergeForm(p *domain.PersonalDetails, form map[string]any) {
	get := func(key string) string {
		if v, ok := form[key]; ok {
			return fmt.Sprint(v)
		}
		return ""
	}
	if v := get("fullName"); v != "" {
		p.FullName = v
	}
	if v := get("dateOfBirth"); v != "" {
		p.DateOfBirth = v
	}
	if v := get("age"); v != "" {
		p.Age = v
	}
	if v := get("gender"); v != "" {
		p.Gender = v
	}
	if v := get("mobileNumber"); v != "" {
		p.MobileNumber = v
	}
	if v := get("email"); v != "" {
		p.Email = v
	}
	if v := get("pinCode"); v != "" {
		p.PinCode = v
	}
	if v := get("annualIncome"); v != "" {
		p.AnnualIncome = v
	}
}

func dataCollectionFor(sess *session) domain.DataCollection {
	required := map[string]string{
		"fullName":     sess.personal.FullName,
		"dateOfBirth":  sess.personal.DateOfBirth,
		"age":          sess.personal.Age,
		"gender":       sess.personal.Gender,
		"mobileNumber": sess.personal.MobileNumber,
		"email":        sess.personal.Email,
		"pinCode":      sess.personal.PinCode,
		"annualIncome": sess.personal.AnnualIncome,
	}
	collected := make([]string, 0, len(required))
	missing := make([]string, 0, len(required))
	for _, name := range []string{
		"fullName", "dateOfBirth", "age", "gender",
		"mobileNumber", "email", "pinCode", "annualIncome",
	} {
		if required[name] != "" {
			collected = append(collected, name)
		} else {
			missing = append(missing, name)
		}
	}
	dc := domain.DataCollection{
		Collected:            collected,
		Missing:              missing,
		CompletionPercentage: float64(len(collected)) / float64(len(required)) * 100,
	}
	if len(missing) > 0 {
		dc.NextRequiredField = missing[0]
	}
	return dc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
