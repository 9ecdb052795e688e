package game

import (
	"errors"
	"testing"

	"banisa-service/internal/domain"
)

func TestGenerateQuestionsFiltersByWord(t *testing.T) {
	questions, err := GenerateQuestions("raja", sampleRecords(), fixedChooser(0), 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if q.Record.Movie != "Raja" {
			t.Fatalf("unexpected record %+v", q.Record)
		}
		if q.Prompt != q.Record.Question {
			t.Fatalf("expected prompt to be the record question, got %q", q.Prompt)
		}
	}
}

func TestGenerateQuestionsShufflesOnce(t *testing.T) {
	records := sampleRecords()
	// Always choosing 0 rotates: [a b c] -> [b c a].
	questions, err := GenerateQuestions("RAJA", records, fixedChooser(0), 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []string{records[1].Question, records[2].Question, records[0].Question}
	for i, q := range questions {
		if q.Prompt != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], q.Prompt)
		}
	}
	if records[0].Question != "Who sang the title track?" {
		t.Fatalf("input corpus must not be reordered")
	}
}

func TestGenerateQuestionsLimit(t *testing.T) {
	questions, err := GenerateQuestions("RAJA", sampleRecords(), fixedChooser(0), 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
}

func TestGenerateQuestionsNoMatch(t *testing.T) {
	_, err := GenerateQuestions("MAGADHEERA", sampleRecords(), nil, 0)
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected no questions error, got %v", err)
	}
	// Unusable records never produce questions.
	_, err = GenerateQuestions("BROKEN", sampleRecords(), nil, 0)
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected no questions error for unusable record, got %v", err)
	}
}
