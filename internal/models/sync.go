package models

// CurrentSyncTickKey names the checkpoint row the sync snapshot process advances.
// Import transactions lock it so a snapshot cannot start mid-import.
const CurrentSyncTickKey = "currentSyncTick"

type LocalSystemFact struct {
	Key   string `json:"key" gorm:"primaryKey;size:255"`
	Value string `json:"value" gorm:"type:text"`
}

func (LocalSystemFact) TableName() string {
	return "local_system_facts"
}
