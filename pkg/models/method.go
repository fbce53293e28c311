package models

// CommunicationMethod is an entry in the ordered catalogue of outreach
// methods the organization uses.
type CommunicationMethod struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Sequence    int    `yaml:"sequence" json:"sequence"`
	Mandatory   bool   `yaml:"mandatory" json:"mandatory"`
}
