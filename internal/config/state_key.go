package config

import (
	"fmt"
)

type StateKeyStruct struct{}

func NewStateKeyStruct() *StateKeyStruct {
	return &StateKeyStruct{}
}

// ChatHistoryKey returns the Redis key holding a user's bounded chat history.
func (r *StateKeyStruct) ChatHistoryKey(userID string) string {
	return fmt.Sprintf("chat:%s:history", userID)
}

// ChatCooldownKey returns the Redis key marking a user's active cooldown window.
func (r *StateKeyStruct) ChatCooldownKey(userID string) string {
	return fmt.Sprintf("chat:%s:cooldown", userID)
}

var StateKey = NewStateKeyStruct()
