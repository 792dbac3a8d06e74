package internal

import (
	"encoding/binary"
	"fmt"
)

// CommandType defines the possible operations for the state machine.
type CommandType uint8

const (
	CommandTCompareAndSwap CommandType = iota // Replace a word if it still has the expected value.
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTCompareAndSwap:
		return "CompareAndSwap"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// Command represents a command to be executed by the state machine (a single entry in the raft log)
type Command struct {
	Type CommandType
	Key  string
	Old  uint64
	New  uint64
}

// commandHeaderSize is Type + Old + New + KeyLen
const commandHeaderSize = 1 + 8 + 8 + 4

// SizeBytes returns the exact number of bytes needed to serialize this command
func (command *Command) SizeBytes() int {
	return commandHeaderSize + len(command.Key)
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 8 bytes for the expected (old) word,
// 8 bytes for the new word,
// 4 bytes for key length (big endian),
// N bytes for key data
func (command *Command) Serialize() []byte {
	result := make([]byte, command.SizeBytes())

	result[0] = byte(command.Type)
	binary.BigEndian.PutUint64(result[1:9], command.Old)
	binary.BigEndian.PutUint64(result[9:17], command.New)
	binary.BigEndian.PutUint32(result[17:21], uint32(len(command.Key)))
	copy(result[commandHeaderSize:], command.Key)

	return result
}

// Deserialize extracts all Command fields from a byte array.
func (command *Command) Deserialize(data []byte) error {
	if len(data) < commandHeaderSize {
		return fmt.Errorf("data too short for command")
	}

	command.Type = CommandType(data[0])
	command.Old = binary.BigEndian.Uint64(data[1:9])
	command.New = binary.BigEndian.Uint64(data[9:17])
	keyLen := binary.BigEndian.Uint32(data[17:21])

	if len(data) != commandHeaderSize+int(keyLen) {
		return fmt.Errorf("data length %d does not match key of length %d", len(data), keyLen)
	}
	command.Key = string(data[commandHeaderSize:])

	return nil
}
