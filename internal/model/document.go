package model

// DocumentRef describes the document a tutoring or quiz request is about.
// Every field is optional.
type DocumentRef struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
	Branch  string `json:"branch"`
	FileURL string `json:"fileUrl"`
}

// ExtractedContent is either bounded text or raw bytes with a media type
// for multimodal models.
type ExtractedContent struct {
	Text      string
	Data      []byte
	MIMEType  string
	Truncated bool
}

func (c *ExtractedContent) IsBinary() bool {
	return c != nil && len(c.Data) > 0
}

// PromptPart is one element of a generation request: text or inline data.
type PromptPart struct {
	Text     string
	MIMEType string
	Data     []byte
}

func TextPart(text string) PromptPart {
	return PromptPart{Text: text}
}

func InlinePart(mimeType string, data []byte) PromptPart {
	return PromptPart{MIMEType: mimeType, Data: data}
}

func (p PromptPart) IsInline() bool {
	return len(p.Data) > 0
}

type QuizItem struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}
