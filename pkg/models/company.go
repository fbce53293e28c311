package models

// DefaultCommunicationPeriodicity is the number of days between expected
// contacts when a company does not set its own.
const DefaultCommunicationPeriodicity = 14

// Company is an organization being tracked for outreach.
type Company struct {
	ID                       string   `yaml:"id" json:"id"`
	Name                     string   `yaml:"name" json:"name"`
	Location                 string   `yaml:"location" json:"location"`
	LinkedInProfile          string   `yaml:"linkedin_profile,omitempty" json:"linkedin_profile,omitempty"`
	Emails                   []string `yaml:"emails" json:"emails"`
	PhoneNumbers             []string `yaml:"phone_numbers" json:"phone_numbers"`
	Comments                 string   `yaml:"comments,omitempty" json:"comments,omitempty"`
	CommunicationPeriodicity int      `yaml:"communication_periodicity,omitempty" json:"communication_periodicity,omitempty"`
}
