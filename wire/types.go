// Package wire defines the generation API's wire shapes and is the only
// place that maps their loosely-typed status strings into canonical
// track.Status values.
package wire

// ProgressEvent is the JSON payload carried by both push sources: each frame
// of the request-scoped stream and every message on the persistent channel.
type ProgressEvent struct {
	ProjectID   string            `json:"projectId"`
	Status      string            `json:"status"`
	Progress    int               `json:"progress"`
	Message     string            `json:"message"`
	CurrentStep string            `json:"currentStep,omitempty"`
	Files       map[string]string `json:"files,omitempty"` // sent on completion
	Error       string            `json:"error,omitempty"`
}

// GenerateRequest is the job specification posted to start a generation.
type GenerateRequest struct {
	CompanyName string      `json:"companyName"`
	Industry    string      `json:"industry"`
	WebsiteType string      `json:"websiteType"`
	DesignStyle string      `json:"designStyle"`
	CodeType    string      `json:"codeType"` // "HTML" or "REACT"
	AIModel     string      `json:"aiModel"`
	ColorScheme ColorScheme `json:"colorScheme"`
}

// ColorScheme selects the palette for a generated site.
type ColorScheme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// Project is the persisted view of a job returned by the project endpoints.
// Its status vocabulary differs from ProgressEvent's (upper-case, PENDING
// instead of a queue status); NormalizeProject folds it into the same
// canonical events.
type Project struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	CompanyName  string        `json:"companyName"`
	Industry     string        `json:"industry"`
	WebsiteType  string        `json:"websiteType"`
	DesignStyle  string        `json:"designStyle"`
	ColorScheme  ColorScheme   `json:"colorScheme"`
	CodeType     string        `json:"codeType"`
	AIModel      string        `json:"aiModel"`
	Status       string        `json:"status"`
	Progress     int           `json:"progress"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
	CompletedAt  string        `json:"completedAt,omitempty"`
	Files        []ProjectFile `json:"files,omitempty"`
}

// ProjectFile is one generated file attached to a project.
type ProjectFile struct {
	ID        string `json:"id"`
	FileName  string `json:"fileName"`
	FileType  string `json:"fileType"`
	FilePath  string `json:"filePath"`
	FileSize  int64  `json:"fileSize"`
	Content   string `json:"content,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// SandpackFiles is the pre-formatted file set for the sandbox renderer.
type SandpackFiles struct {
	ProjectID string            `json:"projectId"`
	CodeType  string            `json:"codeType"`
	Files     map[string]string `json:"files"`
}

// Model describes one available generation engine.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Provider    string `json:"provider"`
}

// Envelope is the standard response wrapper on unary endpoints.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}
