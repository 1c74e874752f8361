package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"datacleaner/pkg/core"
	"datacleaner/pkg/data"
	"datacleaner/pkg/engine"
	"datacleaner/pkg/pipeline"
	"datacleaner/pkg/report"
	"datacleaner/pkg/session"
)

const noSessionMsg = "No active dataset. Please upload a CSV file first."

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.store.Len()})
}

// readUpload validates and parses the uploaded CSV. On failure it has already
// written the response.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*core.Table, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return nil, false
	}
	defer file.Close()

	if err := data.CheckFilename(header.Filename); err != nil {
		msg := "Invalid file format. Please upload a CSV file."
		if errors.Is(err, data.ErrNoFilename) {
			msg = "No file selected"
		}
		writeError(w, http.StatusBadRequest, msg)
		return nil, false
	}

	t, err := data.ReadCSV(file)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "upload parse failed", "file", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read CSV file: "+err.Error())
		return nil, false
	}
	return t, true
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	t, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	id, summary := s.store.Create(t)
	s.logger.WithSession(id).InfoContext(r.Context(), "dataset uploaded",
		"rows", summary.RowCount, "columns", summary.ColumnCount)

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	w.Header().Set(SessionHeader, id)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": id,
		"summary":    summary,
	})
}

// withEngine runs fn against the request's session and maps store errors to responses.
func (s *Server) withEngine(w http.ResponseWriter, r *http.Request, fn func(*engine.Engine) error) bool {
	id := sessionID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, noSessionMsg)
		return false
	}
	err := s.store.Do(id, fn)
	switch {
	case err == nil:
		return true
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusBadRequest, noSessionMsg)
	case errors.Is(err, engine.ErrUnknownOperation):
		writeError(w, http.StatusBadRequest, "Invalid operation")
	default:
		s.logger.WithSession(id).ErrorContext(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
	return false
}

func (s *Server) clean(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Threshold == nil {
		req.Threshold = s.opts.MissingThreshold
	}
	if req.Factor == nil {
		req.Factor = &s.opts.IQRFactor
	}

	var res engine.OperationResult
	if !s.withEngine(w, r, func(e *engine.Engine) (err error) {
		res, err = e.Apply(req)
		return err
	}) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": res})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var sum engine.Summary
	if s.withEngine(w, r, func(e *engine.Engine) error {
		sum = e.Summary()
		return nil
	}) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "summary": sum})
	}
}

func (s *Server) history(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var hist []engine.OperationResult
	if s.withEngine(w, r, func(e *engine.Engine) error {
		hist = e.History()
		return nil
	}) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "history": hist})
	}
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var sum engine.Summary
	if s.withEngine(w, r, func(e *engine.Engine) error {
		sum = e.Reset()
		return nil
	}) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"summary": sum,
			"message": "Dataset reset to original state",
		})
	}
}

func writeCSVAttachment(w http.ResponseWriter, name string, t *core.Table) error {
	var buf bytes.Buffer
	if err := data.WriteCSV(&buf, t); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, err := buf.WriteTo(w)
	return err
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var t *core.Table
	if !s.withEngine(w, r, func(e *engine.Engine) error {
		t = e.CleanedTable()
		return nil
	}) {
		return
	}
	if err := writeCSVAttachment(w, "cleaned_dataset.csv", t); err != nil {
		s.logger.ErrorContext(r.Context(), "download failed", "error", err)
	}
}

func (s *Server) chart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var sum engine.Summary
	if !s.withEngine(w, r, func(e *engine.Engine) error {
		sum = e.Summary()
		return nil
	}) {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteMissingChart(&buf, sum, "png"); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrNoColumns) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.store.Delete(sessionID(r)) {
		writeError(w, http.StatusNotFound, "No active dataset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func formFlag(r *http.Request, name string) bool {
	return r.FormValue(name) != ""
}

// legacyClean cleans an uploaded file in one shot and returns the CSV, without a session.
func (s *Server) legacyClean(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	t, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	opts := pipeline.Options{
		RemoveDuplicates: formFlag(r, "remove_duplicates"),
		FillMissing:      formFlag(r, "fill_missing"),
		DetectOutliers:   formFlag(r, "detect_outliers"),
		IQRFactor:        s.opts.IQRFactor,
	}
	e := engine.New(t)
	pipeline.FromOptions(opts).Run(e)
	if err := writeCSVAttachment(w, "cleaned.csv", e.CleanedTable()); err != nil {
		s.logger.ErrorContext(r.Context(), "legacy clean failed", "error", err)
	}
}
