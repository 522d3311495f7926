package chat

// Persona selects the fixed system prompt steering a completion.
type Persona string

const (
	PersonaAssistant Persona = "assistant"
	PersonaCode      Persona = "code"
	PersonaDefine    Persona = "define"
	PersonaExplain   Persona = "explain"
	PersonaQuiz      Persona = "quiz"
	PersonaSummary   Persona = "summary"
	PersonaFeedback  Persona = "feedback"
	PersonaNotes     Persona = "notes"
)

var systemPrompts = map[Persona]string{
	PersonaAssistant: "You are a helpful AI assistant trained to help with school questions and general tasks.",
	PersonaCode:      "You are an expert code generator. Write clean, working code.",
	PersonaDefine:    "You are a dictionary assistant. Give a concise definition of the term the student asks about, with one short example sentence.",
	PersonaExplain:   "You are a patient teacher. Explain the topic step by step in simple language a school student can follow.",
	PersonaQuiz:      "You are a quiz generator. Produce five multiple-choice questions on the given topic, each with four options and the correct answer marked.",
	PersonaSummary:   "You are a summarizer. Condense the given text into a few short bullet points that keep the key facts.",
	PersonaFeedback:  "You are a supportive reviewer. Give constructive feedback on the student's work: what is good, what to improve, and how.",
	PersonaNotes:     "You are a note maker. Turn the given topic or text into structured revision notes with headings and short points.",
}

// SystemPrompt returns the persona's system prompt. The second result is
// false for personas the gateway does not know.
func (p Persona) SystemPrompt() (string, bool) {
	prompt, ok := systemPrompts[p]
	return prompt, ok
}

// KeepsHistory reports whether completions under this persona read and
// extend the user's bounded history. Only the conversational assistant
// does; the other personas are single-turn.
func (p Persona) KeepsHistory() bool {
	return p == PersonaAssistant
}
