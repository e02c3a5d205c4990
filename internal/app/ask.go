package app

import (
	"context"
	"fmt"
	"strings"

	"assignment_notifier_bot/internal/domain/digest"
)

const (
	// maxAskContextEntries bounds how many digest entries are injected
	// into the /ask prompt.
	maxAskContextEntries = 15
	// maxAskAnswerLen keeps replies under the Telegram message cap.
	maxAskAnswerLen = 4000
)

// Ask answers a free-form question, enriching the prompt with the
// destination's last digest entries and recent conversation turns so the
// model can refer to "assignment [2]" or to what was just discussed.
func (s *DigestServiceImpl) Ask(ctx context.Context, destination, question string) (string, error) {
	entries := s.sessions.Entries(destination)
	history := s.sessions.History(destination)
	s.sessions.AppendHistory(destination, "user", "/ask "+question)

	answer, err := s.estimator.Answer(ctx, question, entries, history)
	if err != nil {
		s.logger.WithField("destination", destination).WithError(err).Error("Question answering failed")
		return "", err
	}

	s.sessions.AppendHistory(destination, "bot", answer)
	return answer, nil
}

// Answer sends a context-enriched question to the model and returns its
// reply, truncated to fit a single message.
func (e *Estimator) Answer(ctx context.Context, question string, entries []digest.Entry, history []Exchange) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.client.Chat(callCtx, askPrompt(question, entries, history))
	if err != nil {
		return "", fmt.Errorf("model answer call failed: %w", err)
	}
	return digest.Truncate(strings.TrimSpace(reply), maxAskAnswerLen), nil
}

func askPrompt(question string, entries []digest.Entry, history []Exchange) string {
	sections := []string{
		"You are a helpful college AI assistant integrated into a Telegram bot.",
		"You can answer general questions, but also questions about specific Canvas assignments recently listed by the bot or about the recent conversation.",
		"--- Assignment Context ---",
		entriesForPrompt(entries),
		"--- Conversation History ---",
		historyForPrompt(history),
		"--- Current Question ---",
		"Please answer the student's following question based on the context provided above (assignments, history) if relevant, or using your general knowledge otherwise:",
		question,
	}
	return strings.Join(sections, "\n\n")
}

// entriesForPrompt renders the last digest concisely for the model.
func entriesForPrompt(entries []digest.Entry) string {
	if len(entries) == 0 {
		return "No assignments were recently listed."
	}

	lines := []string{"Assignments recently listed (use index [N] to refer):"}
	for i, e := range entries {
		if i >= maxAskContextEntries {
			lines = append(lines, fmt.Sprintf("... (and %d more)", len(entries)-i))
			break
		}
		a := e.Assignment
		dueStr := "No due date"
		if a.DueAt != nil {
			dueStr = a.DueAt.Format("Mon, Jan 02 03:04PM")
		}
		lines = append(lines, fmt.Sprintf("  [%d] %s (%s) - Due: %s", e.Index, a.Title, a.CourseName, dueStr))
	}
	return strings.Join(lines, "\n")
}

func historyForPrompt(history []Exchange) string {
	if len(history) == 0 {
		return "No recent message history available."
	}

	lines := []string{"Recent conversation history:"}
	for _, msg := range history {
		role := msg.Role
		if role != "" {
			role = strings.ToUpper(role[:1]) + role[1:]
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", role, strings.TrimSpace(msg.Content)))
	}
	return strings.Join(lines, "\n")
}
