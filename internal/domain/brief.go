package domain

// CampaignBrief son los campos estructurados del formulario que consume el composer.
type CampaignBrief struct {
	BrandName    string    `json:"brand_name"`
	BrandVoice   string    `json:"brand_voice,omitempty"`
	BrandAbout   string    `json:"brand_about,omitempty"`
	EmailType    EmailType `json:"email_type"`
	Request      string    `json:"request"`
	Audience     string    `json:"audience,omitempty"`
	KeyPoints    []string  `json:"key_points,omitempty"`
	CallToAction string    `json:"call_to_action,omitempty"`
}
