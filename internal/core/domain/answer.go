package domain

// Answer is a generated answer with the records it was grounded on.
type Answer struct {
	// Question is the question as asked.
	Question string `json:"question"`

	// Text is the raw model output.
	Text string `json:"answer"`

	// Sources are the retrieved chunks in similarity order, unmodified.
	Sources []ScoredRecord `json:"sources"`
}

// SourceRecords returns the source records without scores.
func (a *Answer) SourceRecords() []Record {
	out := make([]Record, len(a.Sources))
	for i := range a.Sources {
		out[i] = a.Sources[i].Record
	}
	return out
}

// IndexStats describes the current state of the knowledge base index.
type IndexStats struct {
	Collection string `json:"collection"`
	// Dir is where the collection lives: the directory Drop removes for
	// on-disk backends, a server address for remote ones, empty in memory.
	Dir     string `json:"dir"`
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
}

// ClearMessage renders the outcome of clearing the index for users.
func ClearMessage(existed bool) string {
	if existed {
		return "Database cleared."
	}
	return "Database already empty."
}

// NoContextAnswer is returned without calling the model when retrieval finds nothing.
const NoContextAnswer = "I don't know. The knowledge base has no content related to this question."

// DefaultAnswerPrompt is the built-in answer template. {context} and
// {question} are replaced with the retrieved passages and the question.
const DefaultAnswerPrompt = `You are a knowledge base assistant. Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
Use three sentences maximum and keep the answer concise.

Context: {context}

Question: {question}

Helpful Answer:`
