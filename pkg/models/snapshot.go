package models

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = "1.0"

// Snapshot is the persisted form of the whole tracking state. Storage
// backends load and save snapshots; they never see live engine state.
type Snapshot struct {
	Version   string                           `yaml:"version" json:"version"`
	Companies []Company                        `yaml:"companies" json:"companies"`
	History   map[string][]LoggedCommunication `yaml:"history" json:"history"`
	Scheduled []ScheduledCommunication         `yaml:"scheduled" json:"scheduled"`
	Methods   []CommunicationMethod            `yaml:"methods,omitempty" json:"methods,omitempty"`
}

// NewSnapshot returns an empty snapshot at the current version.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version:   SnapshotVersion,
		Companies: []Company{},
		History:   make(map[string][]LoggedCommunication),
		Scheduled: []ScheduledCommunication{},
	}
}
