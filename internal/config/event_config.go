package config

import "time"

const (
	// Event timeline: offsets from room creation. Boundaries are half-open,
	// so the instant an offset is reached already belongs to the next window.
	SecretStart     = 23 * time.Hour // secret-message window opens
	SecretEnd       = 24 * time.Hour // secret-message window closes
	CupidInterimEnd = 40 * time.Hour // interim between events ends
	CupidMainEnd    = 48 * time.Hour // cupid arrow window closes
	RoomEnd         = 49 * time.Hour // room expires

	// Matching
	RoomCapacity    = 6               // members per assembled room
	MatchResultWait = 2 * time.Second // how long /matching/join waits for an instant match

	// Session
	ConnectTimeout = 10 * time.Second // websocket handshake deadline

	// Announcer
	AnnounceInterval = 1 * time.Second

	// Reputation
	InitialReputation      = 1000
	ConfirmedReportBonus   = 50
	BanThresholdReputation = 500
	BanThresholdFrequency  = 5
	BanFrequencyWindow     = 24 * time.Hour
	BanLevel1Duration      = 30 * time.Minute
	BanLevel2Duration      = 6 * time.Hour
	BanLevel3Duration      = 24 * time.Hour
)

// ReportWeights maps a report type to the reputation penalty it carries.
var ReportWeights = map[string]int{
	"Low":      5,
	"Medium":   50,
	"Critical": 250,
}
