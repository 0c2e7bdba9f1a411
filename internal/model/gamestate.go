package model

import "encoding/json"

// CharacterState is the activity the player's character is engaged in
type CharacterState string

const (
	CharacterHome      CharacterState = "home"
	CharacterTraveling CharacterState = "traveling"
	CharacterReturned  CharacterState = "returned"
)

// ValidCharacterState reports whether s is a defined enum member
func ValidCharacterState(s CharacterState) bool {
	switch s {
	case CharacterHome, CharacterTraveling, CharacterReturned:
		return true
	}
	return false
}

// GameState is the schema-constrained per-account game document. Only
// these fields are ever persisted; anything else a client sends is
// dropped by the sanitizer. Collection entries are kept as raw JSON
// because their internal layout belongs to the client, but the container
// shape (array vs not) is enforced.
type GameState struct {
	Sunlight          float64           `json:"sunlight"`
	Starlight         float64           `json:"starlight"`
	CharacterState    CharacterState    `json:"characterState"`
	TravelStartTime   *float64          `json:"travelStartTime"`
	TravelDuration    float64           `json:"travelDuration"`
	SelectedItems     []json.RawMessage `json:"selectedItems"`
	Photos            []json.RawMessage `json:"photos"`
	Souvenirs         []json.RawMessage `json:"souvenirs"`
	Dreams            []json.RawMessage `json:"dreams"`
	Visitors          []json.RawMessage `json:"visitors"`
	SharedLocations   []json.RawMessage `json:"sharedLocations"`
	LastDreamDate     json.RawMessage   `json:"lastDreamDate"`
	IsNightMode       bool              `json:"isNightMode"`
	SunlightCooldown  float64           `json:"sunlightCooldown"`
	StarlightCooldown float64           `json:"starlightCooldown"`
	Friends           []json.RawMessage `json:"friends"`
	FriendRequests    []json.RawMessage `json:"friendRequests"`
}

// DefaultGameState returns the zero-value document for a fresh account
func DefaultGameState() GameState {
	return GameState{
		CharacterState:  CharacterHome,
		SelectedItems:   []json.RawMessage{},
		Photos:          []json.RawMessage{},
		Souvenirs:       []json.RawMessage{},
		Dreams:          []json.RawMessage{},
		Visitors:        []json.RawMessage{},
		SharedLocations: []json.RawMessage{},
		Friends:         []json.RawMessage{},
		FriendRequests:  []json.RawMessage{},
	}
}
