package models

import (
	"strings"
	"time"
)

// CommunicationType is the channel through which an outreach happened.
type CommunicationType string

const (
	TypeEmail           CommunicationType = "Email"
	TypeLinkedInPost    CommunicationType = "LinkedIn Post"
	TypeLinkedInMessage CommunicationType = "LinkedIn Message"
	TypePhoneCall       CommunicationType = "Phone Call"
	TypeMeeting         CommunicationType = "Meeting"
	TypeOther           CommunicationType = "Other"
)

// CommunicationTypes returns every valid communication type in display order.
func CommunicationTypes() []CommunicationType {
	return []CommunicationType{
		TypeEmail,
		TypeLinkedInPost,
		TypeLinkedInMessage,
		TypePhoneCall,
		TypeMeeting,
		TypeOther,
	}
}

// BaselineCommunicationTypes returns the fixed chart domain reported when an
// aggregation matches no records.
func BaselineCommunicationTypes() []CommunicationType {
	return []CommunicationType{TypeEmail, TypeLinkedInPost, TypePhoneCall, TypeMeeting}
}

// Valid reports whether t is one of the enumerated communication types.
func (t CommunicationType) Valid() bool {
	for _, known := range CommunicationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// LoggedCommunication is a completed outreach entry in a company's history.
// Entries are never mutated once appended.
type LoggedCommunication struct {
	ID        string            `yaml:"id" json:"id"`
	CompanyID string            `yaml:"company_id" json:"company_id"`
	Type      CommunicationType `yaml:"type" json:"type"`
	Timestamp time.Time         `yaml:"timestamp" json:"timestamp"`
	Notes     string            `yaml:"notes,omitempty" json:"notes,omitempty"`
	Outcome   string            `yaml:"outcome,omitempty" json:"outcome,omitempty"`
}

// Successful reports whether the outcome marks the interaction as a success.
func (c LoggedCommunication) Successful() bool {
	return strings.Contains(strings.ToLower(c.Outcome), "success")
}

// ScheduledCommunication is a planned outreach that has not happened yet.
type ScheduledCommunication struct {
	ID            string            `yaml:"id" json:"id"`
	CompanyID     string            `yaml:"company_id" json:"company_id"`
	Type          CommunicationType `yaml:"type" json:"type"`
	ScheduledDate time.Time         `yaml:"scheduled_date" json:"scheduled_date"`
	Notes         string            `yaml:"notes,omitempty" json:"notes,omitempty"`
}
