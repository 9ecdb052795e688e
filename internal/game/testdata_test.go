package game

import "banisa-service/internal/domain"

func fixedChooser(i int) Chooser {
	return func(n int) int {
		if i >= n {
			return n - 1
		}
		return i
	}
}

func sampleRecords() []domain.ClueRecord {
	return []domain.ClueRecord{
		{Question: "Who sang the title track?", Answer: "SPB", Song: "Raja Raja", Movie: "Raja", Words: []string{"raja"}},
		{Question: "Which year did it release?", Answer: "1999", Movie: "Raja", Words: []string{"RAJA"}},
		{Question: "Who directed it?", Answer: "Muppalaneni Shiva", Movie: "Raja", Words: []string{" Raja "}},
		{Question: "Lead actor?", Answer: "Pawan Kalyan", Movie: "Kushi", Words: []string{"kushi"}},
		{Question: "", Answer: "missing question", Movie: "Broken", Words: []string{"broken"}},
		{Question: "Two words?", Answer: "no", Movie: "Sita Ramam", Words: []string{"sita ramam"}},
	}
}

func newTestGame(t interface{ Fatalf(string, ...any) }, word string, opts ...Option) *Game {
	g, err := New(word, []domain.GameQuestion{{Prompt: "q"}}, opts...)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}
