package store

import "github.com/starford/promptloom/internal/models"

var defaultCategories = []string{
	"Domain Topic: Business",
	"Domain Topic: Education",
	"Domain Topic: Technology",
	"Domain Topic: Customer Support",
	"Utility: Connecting Prompts",
	"Utility: Make Concise",
	"Utility: Error Handling",
	"Utility: Format Output",
}

var defaultTemplates = []models.TemplateInput{
	{Name: "RLHF Template", Content: "This is a template for Reinforcement Learning from Human Feedback prompts."},
	{Name: "Persona Creator", Content: "Use this template to create a persona for your AI assistant."},
}

type seedPrompt struct {
	category string
	title    string
	content  string
	tag      string
}

var defaultPrompts = []seedPrompt{
	{"Domain Topic: Customer Support", "Initial Greeting", "Hello, thank you for contacting our support team. How can I assist you today?", "Greeting"},
	{"Domain Topic: Customer Support", "Product Question", "I understand you have a question about our product. Could you please provide more details about what you're looking for?", "Question"},
	{"Domain Topic: Customer Support", "Issue Resolution", "I'll help resolve your issue as quickly as possible. Let me gather some information to better assist you.", "Support"},
	{"Utility: Connecting Prompts", "Context Transition", "Based on the information above, let's now focus on [TOPIC].", "Transition"},
	{"Utility: Connecting Prompts", "Logical Bridge", "To connect these ideas, consider the following relationship between [CONCEPT A] and [CONCEPT B].", "Connection"},
	{"Utility: Make Concise", "Brevity Instruction", "Express the above in the most concise way possible, focusing only on essential information.", "Brevity"},
	{"Utility: Make Concise", "Bullet Point Format", "Summarize the key points from above in a bullet point list with no more than 5 items.", "Format"},
	{"Utility: Error Handling", "Clarification Request", "If you encounter ambiguity or missing information, please indicate what specific details you need to proceed.", "Clarification"},
	{"Utility: Error Handling", "Fallback Response", "If unable to complete the request as described, provide an explanation of limitations and suggest alternative approaches.", "Fallback"},
	{"Utility: Format Output", "JSON Structure", "Format your response as a valid JSON object with the following structure: [STRUCTURE]", "JSON"},
	{"Utility: Format Output", "Markdown Formatting", "Present your response using Markdown formatting. Use headers for sections, code blocks for examples, and bullet points for lists.", "Markdown"},
}

// Seed loads the default library: categories, then templates, then prompts.
// Prompts reference categories by the ids assigned during this call.
func Seed(s Store) {
	ids := make(map[string]int64, len(defaultCategories))
	for _, name := range defaultCategories {
		c := s.CreateCategory(models.CategoryInput{Name: name})
		ids[name] = c.ID
	}
	for _, t := range defaultTemplates {
		s.CreateTemplate(t)
	}
	for _, p := range defaultPrompts {
		categoryID := ids[p.category]
		s.CreatePrompt(models.PromptInput{
			Title:      p.title,
			Content:    p.content,
			CategoryID: &categoryID,
			Tags:       []string{p.tag},
		})
	}
}
