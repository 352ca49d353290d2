package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/cognicore/textsuite/pkg/textsuite"
	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/report"
	"github.com/cognicore/textsuite/pkg/textsuite/topics"
)

// TopicsRequest is the JSON form of a topic analysis request.
type TopicsRequest struct {
	Name      string `json:"name"`
	Text      string `json:"text"`
	NumTopics int    `json:"num_topics"`
}

// TopicsResponse keeps the result fields at the top level next to the
// report metadata.
type TopicsResponse struct {
	ReportID   string `json:"report_id"`
	Name       string `json:"name"`
	Confidence string `json:"confidence"`
	topics.Result
	Stats topics.Stats `json:"stats"`
}

func topicsResponse(r report.Report) TopicsResponse {
	return TopicsResponse{
		ReportID:   r.ID,
		Name:       r.Name,
		Confidence: r.Confidence,
		Result:     r.Result,
		Stats:      r.Stats,
	}
}

// Topics analyses an uploaded document (multipart field "file") or JSON text.
func (s *Server) Topics(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		s.topicsUpload(w, r)
		return
	}

	var req TopicsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Name == "" {
		req.Name = "text"
	}
	rep, err := s.suite.AnalyzeText(r.Context(), req.Name, req.Text, req.NumTopics)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topicsResponse(rep))
}

func (s *Server) topicsUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeError(w, r, badRequest(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, Newf(internalerr.ErrInvalidInput, http.StatusBadRequest, "multipart field %q required", "file"))
		return
	}
	defer file.Close()

	if !s.suite.Supported(header.Filename) {
		s.writeError(w, r, Newf(internalerr.ErrUnsupportedFormat, http.StatusUnsupportedMediaType,
			"%q: supported formats are pdf, txt, docx and html", header.Filename))
		return
	}

	numTopics := 0
	if v := r.FormValue("num_topics"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, Newf(internalerr.ErrInvalidInput, http.StatusBadRequest, "num_topics %q is not a number", v))
			return
		}
		numTopics = n
	}

	rep, err := s.suite.AnalyzeDocument(r.Context(), textsuite.Upload{
		Name:      header.Filename,
		Body:      file,
		NumTopics: numTopics,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topicsResponse(rep))
}

type textRequest struct {
	Text string `json:"text"`
}

// Sentiment scores the text of a JSON body.
func (s *Server) Sentiment(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, r, Newf(internalerr.ErrInvalidInput, http.StatusBadRequest, "text required"))
		return
	}
	writeJSON(w, http.StatusOK, s.suite.Sentiment(req.Text))
}

// SentimentHistory lists the remembered sentiment results.
func (s *Server) SentimentHistory(w http.ResponseWriter, r *http.Request) {
	results := s.suite.SentimentHistory()
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

// ClearSentimentHistory forgets the remembered sentiment results.
func (s *Server) ClearSentimentHistory(w http.ResponseWriter, r *http.Request) {
	s.suite.ClearSentimentHistory()
	w.WriteHeader(http.StatusNoContent)
}

// Paraphrase rewrites the text of a JSON body.
func (s *Server) Paraphrase(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.suite.Paraphrase(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"paraphrase": out})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat continues or starts a chat session.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	reply, err := s.suite.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// GetReport returns one archived report.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.suite.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ListReports returns archived reports, newest first.
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		s.writeError(w, r, Newf(internalerr.ErrInvalidInput, http.StatusBadRequest, "limit must be a number"))
		return
	}
	reports, err := s.suite.Reports(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports, "count": len(reports)})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return Newf(internalerr.ErrInvalidInput, http.StatusBadRequest, "request body required")
		}
		return badRequest(err)
	}
	return nil
}

func badRequest(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return Newf(internalerr.ErrInvalidInput, http.StatusBadRequest, "%v", err)
}
