package usecase

import (
	"context"
	"log/slog"
	"strings"

	"pdfqa/internal/domain"
)

const (
	noDocumentsAnswer = "No documents have been ingested yet. Please add a PDF before asking questions."
	noMatchesAnswer   = "I could not find anything relevant to that question in the ingested documents."

	excerptMaxRunes = 160
)

// Ask answers a question against the ingested corpus. The returned answer
// carries one citation per context chunk that was actually shown to the
// model, so sources and answer always agree.
func (s *Session) Ask(ctx context.Context, question string) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, &domain.ValidationError{Reason: "question is empty"}
	}

	status, err := s.index.Status()
	if err != nil {
		return domain.Answer{}, err
	}
	if status.State == domain.CorpusEmpty {
		return domain.Answer{Text: noDocumentsAnswer}, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return domain.Answer{}, err
	}

	results, err := s.index.Search(vectors[0], s.cfg.Retrieve.TopK)
	if err != nil {
		return domain.Answer{}, err
	}
	if min := s.cfg.Retrieve.MinScore; min > 0 {
		kept := results[:0]
		for _, r := range results {
			if r.Score >= min {
				kept = append(kept, r)
			}
		}
		results = kept
	}
	if len(results) == 0 {
		return domain.Answer{Text: noMatchesAnswer}, nil
	}

	included := s.fitBudget(results)

	lang := DetectLanguage(question)
	slog.Debug("answering question",
		"language", string(lang),
		"retrieved", len(results),
		"included", len(included),
	)

	userPrompt := buildUserPrompt(question, included, lang)

	if err := s.gate.acquire(ctx); err != nil {
		return domain.Answer{}, err
	}
	defer s.gate.release()

	genCtx := ctx
	if s.cfg.Generate.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.cfg.Generate.Timeout)
		defer cancel()
	}

	raw, err := s.generator.Generate(genCtx, systemPrompt, userPrompt)
	if err != nil {
		return domain.Answer{}, err
	}

	answer := domain.Answer{
		Text:    cleanAnswer(raw),
		Sources: make([]domain.Citation, 0, len(included)),
	}
	for _, r := range included {
		answer.Sources = append(answer.Sources, domain.Citation{
			Document: r.Document,
			Page:     r.Page,
			Excerpt:  excerpt(r.Text),
		})
	}
	return answer, nil
}

// fitBudget keeps the highest-ranked prefix of results whose estimated token
// total fits the configured context budget. Chunks are dropped whole, never
// cut; the top-ranked chunk is always kept so the model sees at least one
// passage.
func (s *Session) fitBudget(results []domain.RetrievedResult) []domain.RetrievedResult {
	budget := s.cfg.Generate.ContextBudget
	if budget <= 0 {
		return results
	}

	included := results[:0:0]
	total := 0
	for i, r := range results {
		cost := s.tokenizer.CountTokens(r.Text)
		if i > 0 && total+cost > budget {
			break
		}
		included = append(included, r)
		total += cost
	}
	return included
}

// cleanAnswer strips prompt echoes and stray quoting some models prepend.
func cleanAnswer(raw string) string {
	answer := strings.TrimSpace(raw)
	for _, prefix := range []string{"Answer:", "ANSWER:", "answer:", "उत्तर:"} {
		if strings.HasPrefix(answer, prefix) {
			answer = strings.TrimSpace(strings.TrimPrefix(answer, prefix))
			break
		}
	}
	if len(answer) >= 2 && answer[0] == '"' && answer[len(answer)-1] == '"' {
		answer = strings.TrimSpace(answer[1 : len(answer)-1])
	}
	return answer
}

// excerpt bounds a citation excerpt, cutting on a rune boundary.
func excerpt(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= excerptMaxRunes {
		return string(runes)
	}
	return string(runes[:excerptMaxRunes]) + "…"
}
