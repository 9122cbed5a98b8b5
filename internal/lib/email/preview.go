package email

// PreviewData holds sample template data, keyed by template then variable name.
var PreviewData = map[Template]map[string]string{
	TemplateNotification: {
		"Recipient": "johndoe@example.com",
		"Message":   "Hi there",
		"Service":   "API Playground",
	},
}
