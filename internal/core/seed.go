package core

import (
	"time"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// SeedSnapshot returns the demo data set: three companies with a short
// history each and one pending meeting or call per company.
func SeedSnapshot() *models.Snapshot {
	at := func(s string) time.Time {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			panic(err)
		}
		return t
	}
	logged := func(id string, typ models.CommunicationType, ts, notes, outcome string) models.LoggedCommunication {
		return models.LoggedCommunication{ID: id, Type: typ, Timestamp: at(ts), Notes: notes, Outcome: outcome}
	}

	snap := models.NewSnapshot()
	snap.Companies = []models.Company{
		{
			ID:                       "1",
			Name:                     "Tech Innovators Inc",
			Location:                 "San Francisco",
			LinkedInProfile:          "linkedin.com/company/tech-innovators",
			Emails:                   []string{"contact@techinnovators.com", "support@techinnovators.com"},
			PhoneNumbers:             []string{"+1-555-0101", "+1-555-0102"},
			Comments:                 "Key enterprise client",
			CommunicationPeriodicity: models.DefaultCommunicationPeriodicity,
		},
		{
			ID:                       "2",
			Name:                     "Global Software Solutions",
			Location:                 "New York",
			LinkedInProfile:          "linkedin.com/company/global-software",
			Emails:                   []string{"info@globalsoftware.com"},
			PhoneNumbers:             []string{"+1-555-0201"},
			Comments:                 "Expanding partnership",
			CommunicationPeriodicity: models.DefaultCommunicationPeriodicity,
		},
		{
			ID:                       "3",
			Name:                     "DataSphere Analytics",
			Location:                 "Boston",
			LinkedInProfile:          "linkedin.com/company/datasphere",
			Emails:                   []string{"contact@datasphere.com", "sales@datasphere.com"},
			PhoneNumbers:             []string{"+1-555-0301"},
			Comments:                 "New client - High potential",
			CommunicationPeriodicity: models.DefaultCommunicationPeriodicity,
		},
	}

	snap.History = map[string][]models.LoggedCommunication{
		"1": {
			logged("1", models.TypeEmail, "2024-12-01T10:00:00Z", "Quarterly review follow-up", "Successful - Got response"),
			logged("2", models.TypeLinkedInPost, "2024-12-05T14:30:00Z", "Shared success story", "Successful - High engagement"),
			logged("3", models.TypePhoneCall, "2024-12-10T09:00:00Z", "Technical discussion", "Successful - Issues resolved"),
			logged("4", models.TypeMeeting, "2024-12-15T11:00:00Z", "Product roadmap discussion", "Successful - Plan agreed"),
		},
		"2": {
			logged("5", models.TypeMeeting, "2024-12-03T11:00:00Z", "Product demo", "Successful - Demo completed"),
			logged("6", models.TypeEmail, "2024-12-07T16:00:00Z", "Pricing proposal", "Pending response"),
			logged("7", models.TypePhoneCall, "2024-12-12T14:00:00Z", "Follow-up call", "Successful - Questions answered"),
		},
		"3": {
			logged("8", models.TypePhoneCall, "2024-12-02T13:00:00Z", "Initial contact", "Successful - Meeting scheduled"),
			logged("9", models.TypeMeeting, "2024-12-08T10:00:00Z", "Requirements gathering", "Successful - Requirements documented"),
			logged("10", models.TypeEmail, "2024-12-14T15:30:00Z", "Project proposal", "Pending review"),
		},
	}
	for companyID, entries := range snap.History {
		for i := range entries {
			entries[i].CompanyID = companyID
		}
	}

	snap.Scheduled = []models.ScheduledCommunication{
		{ID: "11", CompanyID: "1", Type: models.TypeMeeting, ScheduledDate: at("2024-12-28T10:00:00Z"), Notes: "2025 Planning Meeting"},
		{ID: "12", CompanyID: "2", Type: models.TypePhoneCall, ScheduledDate: at("2024-12-26T14:00:00Z"), Notes: "Implementation check-in"},
		{ID: "13", CompanyID: "3", Type: models.TypeMeeting, ScheduledDate: at("2024-12-27T11:00:00Z"), Notes: "Contract renewal discussion"},
	}
	snap.Methods = DefaultCommunicationMethods()
	return snap
}
