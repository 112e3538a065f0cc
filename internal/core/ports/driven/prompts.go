package driven

// PromptStore serves prompt templates by name. Templates are cached;
// Reload drops the cache.
type PromptStore interface {
	Load(name string) (string, error)
	Reload()
}

// PromptAnswerSystem is the system prompt for answers. Its single %s
// receives the retrieved excerpts, separated by "---" lines.
const PromptAnswerSystem = "answer_system"

// DefaultAnswerSystemPrompt is the built-in answer_system template.
//
//nolint:lll // prompt text
const DefaultAnswerSystemPrompt = `You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question. If you don't know the answer based on the context, just say that you don't know. Use three sentences maximum and keep the answer concise.

Context:

%s`
