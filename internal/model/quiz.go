package model

// QuizQuestion is one multiple-choice question as launched to the interviewee
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// QuizSubmission pairs answers with the questions they answer, by index
type QuizSubmission struct {
	Questions []QuizQuestion `json:"questions"`
	Answers   []string       `json:"answers"`
}

// QuizScore is returned to the interviewee after submitting a quiz
type QuizScore struct {
	Score          int     `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	Percentage     float64 `json:"percentage"`
}
