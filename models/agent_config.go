package models

const (
	DefaultProfilePic = "https://images.unsplash.com/photo-1529626455594-4ff0802cfb7e?auto=format&fit=crop&q=80&w=600"
	DefaultBackground = "https://images.unsplash.com/photo-1550684848-fac1c5b4e853?q=80&w=600"
)

// AgentConfig is the persona and presentation configuration.
// The core passes it through to the backend untouched.
type AgentConfig struct {
	Name         string `json:"name" yaml:"name"`
	Personality  string `json:"personality" yaml:"personality"`
	Voice        string `json:"voice" yaml:"voice"`
	ProfilePic   string `json:"profilePic,omitempty" yaml:"profile_pic"`
	Background   string `json:"background" yaml:"background"`
	Blur         int    `json:"blur" yaml:"blur"`
	Transparency int    `json:"transparency" yaml:"transparency"`
}

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Name:         "Anya",
		Personality:  "Gue bestie lo yang paling asik, santai, tapi perhatian banget. Gaya ngomong gue Jakarta banget (Gue/Lo). Seru diajak ngobrol apa aja deh!",
		Voice:        "Kore",
		ProfilePic:   DefaultProfilePic,
		Background:   DefaultBackground,
		Blur:         15,
		Transparency: 40,
	}
}
