package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"knowledge-check-service/internal/app"
	"knowledge-check-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

type AttemptHandler struct {
	service  *app.AttemptService
	validate *validator.Validate
}

func NewAttemptHandler(service *app.AttemptService) *AttemptHandler {
	return &AttemptHandler{service: service, validate: validator.New()}
}

type attemptRequest struct {
	QuizID      int64     `json:"quiz_id" validate:"required,gt=0"`
	QuestionIDs []int64   `json:"question_ids" validate:"required,min=1,dive,gt=0"`
	AnswerIDs   [][]int64 `json:"answer_ids" validate:"required,eqfield=QuestionIDs"`
}

// Submit handles POST /attempts/.
func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing caller")
		return
	}

	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, schemaMessage(err))
		return
	}

	record, err := h.service.Submit(r.Context(), callerID, domain.AttemptSubmission{
		QuizID:      req.QuizID,
		QuestionIDs: req.QuestionIDs,
		AnswerIDs:   req.AnswerIDs,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func schemaMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Field() == "AnswerIDs" && fe.Tag() == "eqfield" {
			msgs = append(msgs, domain.ReasonLengthMismatch.String())
			continue
		}
		msgs = append(msgs, fe.Namespace()+" failed on "+fe.Tag())
	}
	return strings.Join(msgs, "; ")
}
