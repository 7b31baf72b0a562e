package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lexiqai/voice-input/internal/analysis"
	"github.com/lexiqai/voice-input/internal/commands"
	"github.com/lexiqai/voice-input/internal/correction"
)

const (
	defaultDictationLimit = 20
	maxDictationLimit     = 100
	maxBodySize           = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (g *Gateway) stageParam(r *http.Request) (commands.KeyStage, bool) {
	raw := r.URL.Query().Get("stage")
	if raw == "" {
		raw = g.cfg.DefaultKeyStage
	}
	return commands.ParseKeyStage(raw)
}

func (g *Gateway) handleListCommands(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("stage") == "" {
		writeJSON(w, http.StatusOK, g.commands.All())
		return
	}
	stage, ok := commands.ParseKeyStage(r.URL.Query().Get("stage"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown key stage")
		return
	}
	writeJSON(w, http.StatusOK, g.commands.ForStage(stage))
}

func (g *Gateway) handleSuggest(w http.ResponseWriter, r *http.Request) {
	stage, ok := g.stageParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown key stage")
		return
	}
	suggestions := g.commands.Suggestions(r.URL.Query().Get("q"), stage)
	if suggestions == nil {
		suggestions = []commands.Command{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

type correctRequest struct {
	Text        string                 `json:"text"`
	Candidates  []correction.Candidate `json:"candidates" validate:"dive"`
	Accent      string                 `json:"accent"`
	AgeGroup    string                 `json:"age_group" validate:"omitempty,oneof=nursery early-primary late-primary secondary adult"`
	Sensitivity *int                   `json:"sensitivity" validate:"omitempty,min=0,max=100"`
	Adaptive    bool                   `json:"adaptive"`
}

// handleCorrect runs the correction pipeline on a transcript or on a set of
// recognition candidates.
func (g *Gateway) handleCorrect(w http.ResponseWriter, r *http.Request) {
	var req correctRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := g.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" && len(req.Candidates) == 0 {
		writeError(w, http.StatusBadRequest, "text or candidates is required")
		return
	}

	var corrector correction.Corrector
	if req.AgeGroup != "" {
		corrector = correction.NewAgeRecognizer(req.AgeGroup)
	} else {
		sensitivity := g.cfg.DefaultSensitivity
		if req.Sensitivity != nil {
			sensitivity = *req.Sensitivity
		}
		corrector = correction.NewAccentRecognizer(correction.AccentOptions{
			Profile:     req.Accent,
			Adaptive:    req.Adaptive,
			Sensitivity: sensitivity,
		})
	}

	if len(req.Candidates) == 0 {
		writeJSON(w, http.StatusOK, correction.Result{
			Transcript: corrector.Apply(req.Text),
			Raw:        req.Text,
			Confidence: 1,
		})
		return
	}
	writeJSON(w, http.StatusOK, corrector.ProcessRecognitionResult(req.Candidates))
}

func (g *Gateway) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user")
	prefs, err := g.store.GetPreferences(r.Context(), userID)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load preferences")
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (g *Gateway) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user")
	current, err := g.store.GetPreferences(r.Context(), userID)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load preferences")
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}

	// Decoding over the current preferences makes the update partial.
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&current); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	current.UserID = userID

	if err := g.validate.Struct(&current); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := correction.LookupProfile(current.Accent); !ok {
		writeError(w, http.StatusBadRequest, "unknown accent profile")
		return
	}
	if current.AgeGroup != "" {
		if _, ok := correction.ParseAgeGroup(current.AgeGroup); !ok {
			writeError(w, http.StatusBadRequest, "unknown age group")
			return
		}
	}

	saved, err := g.store.PutPreferences(r.Context(), current)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to save preferences")
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (g *Gateway) handleListDictations(w http.ResponseWriter, r *http.Request) {
	limit := defaultDictationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxDictationLimit)
	}

	userID := r.PathValue("user")
	list, err := g.store.ListDictations(r.Context(), userID, limit)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list dictations")
		writeError(w, http.StatusInternalServerError, "failed to list dictations")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type analyzeResponse struct {
	Counts map[analysis.ElementKind]int `json:"counts"`
	Report *analysis.Report             `json:"report,omitempty"`
	Error  string                       `json:"error,omitempty"`
}

func (g *Gateway) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var content analysis.Content
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := content.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := analyzeResponse{Counts: content.CountByKind()}
	report, err := g.analyzer.Analyze(r.Context(), content)
	switch {
	case errors.Is(err, analysis.ErrAnalyzerUnavailable):
		resp.Error = err.Error()
		writeJSON(w, http.StatusNotImplemented, resp)
	case err != nil:
		g.logger.Error().Err(err).Str("analyzer", g.analyzer.Name()).Msg("Content analysis failed")
		resp.Error = "analysis failed"
		writeJSON(w, http.StatusBadGateway, resp)
	default:
		resp.Report = &report
		writeJSON(w, http.StatusOK, resp)
	}
}
