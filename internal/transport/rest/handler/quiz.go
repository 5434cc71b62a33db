package handler

import (
	"encoding/json"
	"net/http"

	"intervue/internal/model"
	"intervue/internal/service"
)

// Score handles POST /v1/quiz/score
// @Summary Score a submitted quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param body body model.QuizSubmission true "questions and answers"
// @Success 200 {object} model.QuizScore
// @Router /v1/quiz/score [post]
func Score(w http.ResponseWriter, r *http.Request) {
	var sub model.QuizSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if sub.Questions == nil || sub.Answers == nil {
		writeError(w, http.StatusBadRequest, "missing answers or questions")
		return
	}
	writeJSON(w, http.StatusOK, service.ScoreQuiz(sub))
}
