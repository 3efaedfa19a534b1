package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer is the retrieval-augmented answer template.
	// It expects {context} and {question} placeholders.
	PromptAnswer = "answer"

	// PromptImageCaption is the instruction sent to the vision model with an image.
	// It has no placeholders.
	PromptImageCaption = "image_caption"
)
