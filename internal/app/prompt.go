package app

import (
	"fmt"
	"strings"

	"studyshelf/internal/model"
)

const (
	contentBegin = "----- BEGIN DOCUMENT CONTENT -----"
	contentEnd   = "----- END DOCUMENT CONTENT -----"

	QuizQuestionCount = 5
	QuizOptionCount   = 4
)

// BuildChatPrompt frames a student's question about a document. Only the
// reference fields that are set are mentioned.
func BuildChatPrompt(ref model.DocumentRef, content *model.ExtractedContent, question string) []model.PromptPart {
	var b strings.Builder
	b.WriteString("You are a helpful engineering tutor assisting a university engineering student with their study material.\n")
	writeDocumentDetails(&b, ref)
	writeContent(&b, ref, content)

	b.WriteString("\nStudent question:\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer clearly and accurately at the level of an undergraduate engineering course. ")
	b.WriteString("Base your answer on the document where possible. ")
	b.WriteString("If the question is unrelated to the document or to engineering studies, politely redirect the student back to the material.\n")

	return withInline(b.String(), content)
}

// BuildQuizPrompt asks for a fixed-shape JSON quiz about a document.
func BuildQuizPrompt(ref model.DocumentRef, content *model.ExtractedContent) []model.PromptPart {
	title := orDefault(ref.Title, "the provided study material")
	subject := orDefault(ref.Subject, "general engineering")
	branch := orDefault(ref.Branch, "engineering")

	var b strings.Builder
	b.WriteString("You are a helpful engineering tutor preparing a revision quiz.\n")
	b.WriteString("Document: " + title + "\n")
	b.WriteString("Subject: " + subject + "\n")
	b.WriteString("Branch: " + branch + "\n")
	writeContent(&b, ref, content)

	fmt.Fprintf(&b, "\nCreate exactly %d multiple-choice questions that test understanding of this material. ", QuizQuestionCount)
	fmt.Fprintf(&b, "Each question must have exactly %d options and exactly one correct option.\n", QuizOptionCount)
	b.WriteString("Respond with ONLY a JSON array. Do not wrap it in markdown code fences and do not add any text before or after it.\n")
	b.WriteString("Use exactly this schema:\n")
	b.WriteString(`[{"id": 1, "question": "string", "options": ["string", "string", "string", "string"], "correctAnswer": 0}]`)
	b.WriteString("\n\"id\" numbers the questions from 1. \"correctAnswer\" is the 0-based index of the correct option.\n")

	return withInline(b.String(), content)
}

func writeDocumentDetails(b *strings.Builder, ref model.DocumentRef) {
	fields := []struct{ label, value string }{
		{"Document title", ref.Title},
		{"Subject", ref.Subject},
		{"Branch", ref.Branch},
	}
	wrote := false
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		if !wrote {
			b.WriteString("\nThe student is studying:\n")
			wrote = true
		}
		b.WriteString(f.label + ": " + v + "\n")
	}
}

func writeContent(b *strings.Builder, ref model.DocumentRef, content *model.ExtractedContent) {
	switch {
	case content.IsBinary():
		b.WriteString("\nThe full document is attached to this message.\n")
	case content != nil && content.Text != "":
		b.WriteString("\nDocument content:\n")
		b.WriteString(contentBegin + "\n")
		b.WriteString(content.Text)
		b.WriteString("\n" + contentEnd + "\n")
		if content.Truncated {
			b.WriteString("(The document was shortened; only its beginning is shown.)\n")
		}
	case strings.TrimSpace(ref.FileURL) != "":
		b.WriteString("\nNote: the document content is unavailable right now. Work from the details above and general knowledge of the subject.\n")
	}
}

func withInline(text string, content *model.ExtractedContent) []model.PromptPart {
	parts := []model.PromptPart{model.TextPart(text)}
	if content.IsBinary() {
		parts = append(parts, model.InlinePart(content.MIMEType, content.Data))
	}
	return parts
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
