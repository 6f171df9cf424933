package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/tieubaoca/questbot-be/service"
	"github.com/tieubaoca/questbot-be/types"
)

// QuestionnaireHandler drives the questionnaire pipeline over HTTP:
// upload+extract, answer, export.
type QuestionnaireHandler struct {
	questionnaire *service.QuestionnaireService
	extractor     *service.ExtractService
	report        *service.ReportService
	sessions      *service.SessionStore
}

func NewQuestionnaireHandler(
	questionnaire *service.QuestionnaireService,
	extractor *service.ExtractService,
	report *service.ReportService,
	sessions *service.SessionStore,
) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		questionnaire: questionnaire,
		extractor:     extractor,
		report:        report,
		sessions:      sessions,
	}
}

// HandleExtract accepts a questionnaire PDF, extracts its text and asks
// the model for the question list. A non-PDF upload degrades to an
// inline message rather than an error.
func (h *QuestionnaireHandler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	session := resolveSession(h.sessions, w, r)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		sendError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	_, header, err := r.FormFile("file")
	if err != nil {
		sendError(w, "Invalid file", http.StatusBadRequest)
		return
	}

	tmpDir, err := os.MkdirTemp("", "questionnaire-")
	if err != nil {
		sendError(w, "Upload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	path, err := saveUpload(header, tmpDir)
	if err != nil {
		sendError(w, "Upload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	text := h.extractor.ExtractText(path)
	if text == service.MsgOnlyPDF {
		sendMessage(w, service.MsgOnlyPDF)
		return
	}

	questions, err := h.questionnaire.ExtractQuestions(r.Context(), session, text)
	if err != nil {
		sendError(w, "Extraction failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, types.ExtractQuestionsResponse{Questions: questions})
}

// HandleAnswer answers the session's pending questions in order. The
// request body may override the question list.
func (h *QuestionnaireHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	session := resolveSession(h.sessions, w, r)

	// Body is optional: empty means "use the session's pending questions".
	var req types.AnswerQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	questions := req.Questions
	if len(questions) == 0 {
		questions = session.PendingQuestions()
	}
	if len(questions) == 0 {
		sendError(w, "No questions to answer; upload a questionnaire first", http.StatusBadRequest)
		return
	}

	transcript, err := h.questionnaire.AnswerAll(r.Context(), session, questions)
	if err != nil {
		sendError(w, "Answering failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, types.AnswerQuestionsResponse{
		Transcript: transcript,
		Rendered:   transcript.Render(),
	})
}

// HandleExport renders the session transcript as a PDF report and serves
// it for download.
func (h *QuestionnaireHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	session := resolveSession(h.sessions, w, r)

	path, err := h.report.Export(session.Transcript())
	if err != nil {
		if err == service.ErrEmptyTranscript {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		sendError(w, "Export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=questionnaire_report.pdf")
	http.ServeFile(w, r, path)
}
