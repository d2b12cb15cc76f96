package model

// UserPreference is the singleton preference document (row id 1).
type UserPreference struct {
	Accounts     []PreferenceAccount `json:"accounts"`
	StreamerInfo []StreamerInfo      `json:"streamerInfo,omitempty"`
}

type PreferenceAccount struct {
	AccountNumber string `json:"accountNumber"`
	Primary       bool   `json:"primaryAccount"`
	NickName      string `json:"nickName,omitempty"`
	AccountColor  string `json:"accountColor,omitempty"`
	Type          string `json:"type,omitempty"`
}

type StreamerInfo struct {
	StreamerSocketURL string `json:"streamerSocketUrl"`
	CustomerID        string `json:"customerId,omitempty"`
}
