package redis

import (
	"fmt"

	"github.com/kprao/rummyscore/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "rummy"

// authKey returns the Redis key for a game's credential record
func authKey(id model.GameID) string {
	return fmt.Sprintf("%s:auth:%s", keyPrefix, id)
}

// dataKey returns the Redis key for a game's data record
func dataKey(id model.GameID) string {
	return fmt.Sprintf("%s:data:%s", keyPrefix, id)
}

// updatesChannel returns the pub/sub channel carrying a game's writes
func updatesChannel(id model.GameID) string {
	return fmt.Sprintf("%s:updates:%s", keyPrefix, id)
}
