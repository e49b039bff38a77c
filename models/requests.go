package models

type Turn_Request struct {
	Prompt string `json:"prompt"`
	// Image is an optional attachment as a data URI.
	Image string `json:"image,omitempty"`
}

type Edit_Request struct {
	Text string `json:"text"`
}

type Call_End_Request struct {
	// Duration optionally overrides the measured duration ("m:ss"), for clients
	// that run the call timer themselves.
	Duration string `json:"duration,omitempty"`
}
