package dto

// QuestionMessage is what the browser sends over the socket. Older
// clients omit the type field entirely; those are treated as questions.
type QuestionMessage struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	ClientId string `json:"clientId,omitempty"`
}

// StreamMessage is one outbound frame: a token, the final stream_end
// carrying the whole answer, or an error.
type StreamMessage struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	ClientId string `json:"clientId,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	ActiveConnections *int   `json:"active_connections,omitempty"`
}

// LLMStatusResponse is the body of GET /api/llm-status.
type LLMStatusResponse struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Reachable bool   `json:"reachable"`
	Error     string `json:"error,omitempty"`
}
