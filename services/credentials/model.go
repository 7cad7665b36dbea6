package credentials

import "time"

// ConnectSession tracks one oauth authorization-code flow with a payment provider
type ConnectSession struct {
	UID          string
	ProviderName string
	Scopes       string
	ReturnURL    string
	Verifier     string
	CreatedAt    time.Time
	LastModified *time.Time
	Done         bool
}

type Status struct {
	ProviderName string     `json:"providerName"`
	SessionUID   string     `json:"sessionUid,omitempty"`
	Scopes       string     `json:"scopes,omitempty"`
	Connected    bool       `json:"connected"`
	Refreshable  bool       `json:"refreshable"`
	ValidUntil   *time.Time `json:"validUntil,omitempty"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}
