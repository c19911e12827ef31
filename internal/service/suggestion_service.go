package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/Kestrel/config"
	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/model"
	"github.com/lshigami/Kestrel/internal/repository"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// SuggestionService proposes marks and feedback for a descriptive answer
// using Gemini. The proposal is advisory: evaluators see it, nothing is ever
// written to storage from this path.
type SuggestionService interface {
	SuggestForAnswer(answerID, teacherID uint, role model.Role) (*dto.SuggestionResponse, error)
}

type suggestionService struct {
	client      *genai.GenerativeModel
	answerRepo  repository.AnswerRepository
	attemptRepo repository.AttemptRepository
	examRepo    repository.ExamRepository
}

func NewSuggestionService(
	cfg *config.Config,
	answerRepo repository.AnswerRepository,
	attemptRepo repository.AttemptRepository,
	examRepo repository.ExamRepository,
) (SuggestionService, error) {
	svc := &suggestionService{
		answerRepo:  answerRepo,
		attemptRepo: attemptRepo,
		examRepo:    examRepo,
	}
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. SuggestionService will be non-functional.")
		return svc, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	svc.client = client.GenerativeModel("gemini-1.5-flash")
	return svc, nil
}

func (s *suggestionService) SuggestForAnswer(answerID, teacherID uint, role model.Role) (*dto.SuggestionResponse, error) {
	if role != model.RoleTeacher && role != model.RoleAdmin {
		return nil, fmt.Errorf("suggestions are evaluator-only: %w", ErrForbidden)
	}

	answer, err := s.answerRepo.FindByIDWithQuestion(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("answer %d: %w", answerID, ErrNotFound)
		}
		return nil, err
	}
	if answer.Question.Type != model.QuestionDescriptive || answer.AnswerText == nil {
		return nil, fmt.Errorf("answer %d is not a descriptive answer: %w", answerID, ErrBadRequest)
	}

	if role == model.RoleTeacher {
		attempt, err := s.attemptRepo.FindByID(answer.AttemptID)
		if err != nil {
			return nil, err
		}
		exam, err := s.examRepo.FindByID(attempt.ExamID)
		if err != nil {
			return nil, err
		}
		if exam.TeacherID != teacherID {
			return nil, fmt.Errorf("teacher %d does not own exam %d: %w", teacherID, exam.ID, ErrForbidden)
		}
	}

	if s.client == nil {
		return nil, fmt.Errorf("suggestion service is not configured: %w", ErrBadRequest)
	}

	marks, feedback, err := s.gradeWithGemini(&answer.Question, *answer.AnswerText)
	if err != nil {
		log.Error().Err(err).Uint("answerID", answerID).Msg("Gemini suggestion failed")
		return nil, err
	}
	return &dto.SuggestionResponse{AnswerID: answerID, Marks: marks, Feedback: feedback}, nil
}

func (s *suggestionService) gradeWithGemini(question *model.Question, answerText string) (float64, string, error) {
	var sb strings.Builder
	sb.WriteString("You are an examiner grading a descriptive exam answer.\n")
	fmt.Fprintf(&sb, "Question (worth %.2f marks):\n%s\n", question.Marks, question.Text)
	if question.WordLimit != nil {
		fmt.Fprintf(&sb, "Word limit: %d words.\n", *question.WordLimit)
	}
	fmt.Fprintf(&sb, "\nStudent answer:\n%s\n\n", answerText)
	fmt.Fprintf(&sb, "Respond in exactly this format:\nScore: <number between 0 and %.2f>\nFeedback: <2-4 sentences of constructive feedback>\n", question.Marks)

	resp, err := s.client.GenerateContent(context.Background(), genai.Text(sb.String()))
	if err != nil {
		return 0, "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return 0, "", fmt.Errorf("gemini returned an empty response")
	}

	raw := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw += string(text)
		}
	}
	return parseSuggestion(raw, question.Marks)
}

// parseSuggestion extracts the Score:/Feedback: pair from the model output
// and clamps the score into [0, maxMarks].
func parseSuggestion(raw string, maxMarks float64) (float64, string, error) {
	scoreIdx := strings.Index(raw, "Score:")
	if scoreIdx == -1 {
		return 0, "", fmt.Errorf("response does not contain 'Score:' prefix")
	}
	rest := raw[scoreIdx+len("Score:"):]

	scoreLine := rest
	if nl := strings.Index(rest, "\n"); nl != -1 {
		scoreLine = rest[:nl]
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(scoreLine), 64)
	if err != nil {
		return 0, "", fmt.Errorf("could not parse score %q: %w", strings.TrimSpace(scoreLine), err)
	}
	if score < 0 {
		score = 0
	}
	if maxMarks > 0 && score > maxMarks {
		score = maxMarks
	}

	feedback := ""
	if fbIdx := strings.Index(rest, "Feedback:"); fbIdx != -1 {
		feedback = strings.TrimSpace(rest[fbIdx+len("Feedback:"):])
	}
	return score, feedback, nil
}
