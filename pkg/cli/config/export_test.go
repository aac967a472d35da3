package config

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewSearchForTest creates a Search config for testing purposes
func NewSearchForTest(serperAPIKey string) *Search {
	return &Search{serperAPIKey: serperAPIKey}
}

// NewNotifyForTest creates a Notify config for testing purposes
func NewNotifyForTest(botToken, channel string) *Notify {
	return &Notify{
		slackBotToken: botToken,
		slackChannel:  channel,
	}
}

// NewPolicyForTest creates a Policy config for testing purposes
func NewPolicyForTest(path string) *Policy {
	return &Policy{path: path}
}
