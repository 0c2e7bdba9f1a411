package model

// OfflineReward is the idle accumulation granted for time spent logged out
type OfflineReward struct {
	Sunlight     int64   `json:"sunlight"`
	Starlight    int64   `json:"starlight"`
	OfflineHours float64 `json:"offlineHours"`
}
