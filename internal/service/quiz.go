package service

import "intervue/internal/model"

// ScoreQuiz counts answers equal to the question's correct answer, matched by index.
func ScoreQuiz(sub model.QuizSubmission) model.QuizScore {
	score := 0
	for i, q := range sub.Questions {
		if i < len(sub.Answers) && sub.Answers[i] != "" && sub.Answers[i] == q.CorrectAnswer {
			score++
		}
	}

	total := len(sub.Questions)
	percentage := 0.0
	if total > 0 {
		percentage = float64(score) / float64(total) * 100
	}
	return model.QuizScore{
		Score:          score,
		TotalQuestions: total,
		Percentage:     percentage,
	}
}
