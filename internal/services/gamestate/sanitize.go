package gamestate

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/hikari-games/foxden-server/internal/model"
)

// Sanitize normalizes an arbitrary client-supplied document into the
// game-state schema. It is total: malformed input produces the default
// record, wrong-typed fields fall back to safe zero values, and unknown
// fields are dropped. Nothing a client sends is ever persisted verbatim.
func Sanitize(raw json.RawMessage) model.GameState {
	state := model.DefaultGameState()

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return state
	}

	state.Sunlight = toNumber(doc["sunlight"])
	state.Starlight = toNumber(doc["starlight"])
	state.SunlightCooldown = toNumber(doc["sunlightCooldown"])
	state.StarlightCooldown = toNumber(doc["starlightCooldown"])
	state.TravelDuration = toNumber(doc["travelDuration"])
	state.IsNightMode = toBool(doc["isNightMode"])

	if cs, ok := doc["characterState"].(string); ok && model.ValidCharacterState(model.CharacterState(cs)) {
		state.CharacterState = model.CharacterState(cs)
	}

	if truthy(doc["travelStartTime"]) {
		if n := toNumber(doc["travelStartTime"]); n != 0 {
			state.TravelStartTime = &n
		}
	}

	if truthy(doc["lastDreamDate"]) {
		if raw, err := json.Marshal(doc["lastDreamDate"]); err == nil {
			state.LastDreamDate = raw
		}
	}

	state.SelectedItems = toList(doc["selectedItems"])
	state.Photos = toList(doc["photos"])
	state.Souvenirs = toList(doc["souvenirs"])
	state.Dreams = toList(doc["dreams"])
	state.Visitors = toList(doc["visitors"])
	state.SharedLocations = toList(doc["sharedLocations"])
	state.Friends = toList(doc["friends"])
	state.FriendRequests = toList(doc["friendRequests"])

	return state
}

// toNumber coerces a decoded JSON value to a float64, defaulting to 0.
// Numeric strings and booleans coerce the way the client's own number
// conversion does.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toBool(v any) bool {
	return truthy(v)
}

// truthy mirrors the client's loose boolean conversion
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	case nil:
		return false
	default:
		// objects and arrays
		return true
	}
}

// toList coerces a value to a list of raw JSON entries; anything that is
// not an array becomes the empty list
func toList(v any) []json.RawMessage {
	items, ok := v.([]any)
	if !ok {
		return []json.RawMessage{}
	}
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			continue
		}
		out = append(out, raw)
	}
	return out
}
