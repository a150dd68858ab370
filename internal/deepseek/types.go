package deepseek

// Endpoint and payload literals. The request body never varies between runs.
const (
	DefaultEndpoint = "https://api.deepseek.com/v1/chat/completions"
	DefaultModel    = "deepseek-chat"
	DefaultPrompt   = "Hello from DeepSeek API!"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat completion endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// FixedRequest returns the literal payload every invocation sends.
func FixedRequest() ChatRequest {
	return ChatRequest{
		Model: DefaultModel,
		Messages: []Message{
			{Role: "user", Content: DefaultPrompt},
		},
	}
}
