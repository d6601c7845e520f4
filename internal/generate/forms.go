package generate

import (
	"strings"

	"writer-studio/internal/apperr"
	"writer-studio/internal/model"
)

// EmailForm is the email writer input. The first six fields are sent to
// the generator; the rest only shape the saved artifact.
type EmailForm struct {
	RecipientName     string `json:"recipientName"`
	Purpose           string `json:"emailPurpose"`
	Tone              string `json:"tone"`
	KeyPoints         string `json:"keyPoints"`
	AdditionalContext string `json:"additionalContext,omitempty"`
	Length            string `json:"emailLength"`

	Subject   string   `json:"-"`
	Recipient string   `json:"-"`
	Tags      []string `json:"-"`
}

// Validate checks the required fields in form order.
func (f EmailForm) Validate() error {
	required := []struct {
		field, label, value string
	}{
		{"recipientName", "Recipient Name", f.RecipientName},
		{"emailPurpose", "Email Purpose", f.Purpose},
		{"tone", "Tone", f.Tone},
		{"keyPoints", "Key Points to Cover", f.KeyPoints},
		{"emailLength", "Email Length", f.Length},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperr.NewValidation(r.field, r.label+" is required")
		}
	}
	return nil
}

// PromptForm is the structured prompt writer input.
type PromptForm struct {
	TaskDescription     string `json:"taskDescription"`
	UseCaseCategory     string `json:"useCaseCategory"`
	DesiredOutputFormat string `json:"desiredOutputFormat"`
	TargetModel         string `json:"targetModel"`
	ContextBackground   string `json:"contextBackground"`
	IndustryDomain      string `json:"industryDomain"`
}

const DefaultTargetModel = "GPT-4"

func (f PromptForm) Validate() error {
	if strings.TrimSpace(f.TaskDescription) == "" {
		return apperr.NewValidation("taskDescription", "Please enter a task description")
	}
	return nil
}

func (f PromptForm) withDefaults() PromptForm {
	if strings.TrimSpace(f.TargetModel) == "" {
		f.TargetModel = DefaultTargetModel
	}
	return f
}

// Prompt renders the form as the plain-text prompt shown as the user turn.
func (f PromptForm) Prompt() string {
	f = f.withDefaults()

	var b strings.Builder
	b.WriteString("Task: " + f.TaskDescription + "\n\n")
	if f.UseCaseCategory != "" {
		b.WriteString("Use Case Category: " + f.UseCaseCategory + "\n")
	}
	if f.ContextBackground != "" {
		b.WriteString("Context/Background: " + f.ContextBackground + "\n")
	}
	if f.IndustryDomain != "" {
		b.WriteString("Industry/Domain: " + f.IndustryDomain + "\n")
	}
	format := f.DesiredOutputFormat
	if format == "" {
		format = "paragraph"
	}
	b.WriteString("\nPlease provide the response in " + format + " format")
	b.WriteString(" (optimized for " + f.TargetModel + ").")
	return b.String()
}

// emailDraft turns generated text into a savable draft. An explicit
// subject wins over one found in the text.
func emailDraft(form EmailForm, text string) model.ArtifactDraft {
	subject := strings.TrimSpace(form.Subject)
	if subject == "" {
		subject = ExtractSubject(text, form.Purpose)
	}
	recipient := form.Recipient
	if recipient == "" {
		recipient = form.RecipientName
	}
	return model.ArtifactDraft{
		Kind:      model.KindEmail,
		Subject:   subject,
		Content:   text,
		Recipient: recipient,
		Category:  form.Purpose,
		Tags:      model.NormalizeTags(form.Tags),
	}
}

// promptDraft turns optimized prompt text into a savable draft.
func promptDraft(title, category, targetModel, text string) model.ArtifactDraft {
	return model.ArtifactDraft{
		Kind:      model.KindPrompt,
		Subject:   strings.TrimSpace(title),
		Content:   text,
		Recipient: targetModel,
		Category:  category,
	}
}
