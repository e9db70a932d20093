package practice

import (
	"vocabtrainer/internal/errclass"
	"vocabtrainer/internal/models"
)

// QuestionView is a quiz question as shown to the student, without the answer
type QuestionView struct {
	Index      int                 `json:"index"`
	Total      int                 `json:"total"`
	Word       string              `json:"word,omitempty"`
	Type       models.QuestionType `json:"type"`
	Question   string              `json:"question"`
	Simplified string              `json:"simplified,omitempty"`
	Options    []string            `json:"options,omitempty"`
	Eliminated []int               `json:"eliminated,omitempty"`
	Answered   bool                `json:"answered"`
}

// View is a read-only snapshot of a session
type View struct {
	ID         string                  `json:"id"`
	Phase      Phase                   `json:"phase"`
	Error      *errclass.Info          `json:"error,omitempty"`
	Words      []string                `json:"words"`
	Settings   models.PracticeSettings `json:"settings"`
	StudyMode  models.StudyMode        `json:"studyMode,omitempty"`
	Cards      []models.FrayerModel    `json:"cards,omitempty"`
	WordIndex  int                     `json:"wordIndex"`
	CanQuiz    bool                    `json:"canStartQuiz"`
	Question   *QuestionView           `json:"question,omitempty"`
	HintsLeft  int                     `json:"hintsLeft"`
	Results    []models.QuizResult     `json:"results,omitempty"`
	Score      int                     `json:"score"`
	TimingData []models.QuestionTiming `json:"timingData,omitempty"`
}

// View returns a snapshot of the session
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:        s.id,
		Phase:     s.phase,
		Words:     append([]string(nil), s.words...),
		Settings:  s.settings,
		StudyMode: s.studyMode,
		WordIndex: s.wordIndex,
		CanQuiz:   s.phase == PhaseStudying && s.reachedLast,
	}
	if s.loadErr != nil {
		info := errclass.Classify(s.loadErr)
		v.Error = &info
	}

	switch s.phase {
	case PhaseStudying:
		v.Cards = append([]models.FrayerModel(nil), s.cards...)
	case PhaseQuiz, PhaseComplete:
		v.HintsLeft = s.quiz.HintsLeft()
		v.Results = s.quiz.Results()
		v.Score = s.quiz.Score()
		v.TimingData = s.quiz.Timings()
		if q, ok := s.quiz.Current(); ok {
			qv := &QuestionView{
				Index:      s.quiz.Index(),
				Total:      s.quiz.Len(),
				Type:       q.Type,
				Question:   q.Question,
				Simplified: s.quiz.SimplifiedText(),
				Options:    append([]string(nil), q.Options...),
				Eliminated: s.quiz.Eliminated(),
				Answered:   s.quiz.Answered(),
			}
			// The word is the answer, so it is only shown once answered.
			if qv.Answered {
				qv.Word = q.Word
			}
			v.Question = qv
		}
	}
	return v
}
