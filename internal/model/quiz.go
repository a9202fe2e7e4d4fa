package model

// QuizAnswer is a single answer from the onboarding quiz. Answers arrive
// as an ordered list of (question, answer) pairs.
type QuizAnswer struct {
	AnswerID   string `json:"answer_id"`
	QuestionID int    `json:"question_id"`
}
