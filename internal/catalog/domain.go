package catalog

import "time"

// Meta carries the columns shared by every catalog table.
type Meta struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code,omitempty"`
	ModelType   string    `json:"modelType"`
	Embedded    bool      `json:"embedded"`
	UploaderID  string    `json:"uploaderId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Channel is an upstream model provider.
type Channel struct {
	Meta
	AdapterType string `json:"adapterType"`
	Models      string `json:"models"`
	BaseURL     string `json:"baseUrl"`
	APIKey      string `json:"apiKey"`
}

// Tool is an invokable capability exposed to gateway clients.
type Tool struct {
	Meta
	Permission string `json:"permission"`
	Status     string `json:"status"`
}

// Processor transforms requests or responses in the gateway pipeline.
type Processor struct {
	Meta
	Type string `json:"type"`
}

// Preset is a stored prompt configuration.
type Preset struct {
	Meta
	Prefix      string   `json:"prefix,omitempty"`
	Prompt      string   `json:"prompt"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxToken    *int     `json:"maxToken,omitempty"`
	Model       string   `json:"model,omitempty"`
}
