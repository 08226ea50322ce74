package serializer

import (
	"encoding/binary"
	"fmt"
	"github.com/birchkv/birch/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey      byte = 1 << 0
	hasExpireIn byte = 1 << 1
	hasDeleteIn byte = 1 << 2
	hasValue    byte = 1 << 3
	hasOk       byte = 1 << 4
	hasErr      byte = 1 << 5
	hasMeta     byte = 1 << 6
	hasBatch    byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Serialize nested batch items first so their total size is known.
	// Each item is encoded recursively with a length prefix.
	var batchItems [][]byte
	if msg.Batch != nil {
		batchItems = make([][]byte, len(msg.Batch))
		for i, item := range msg.Batch {
			itemBytes, err := b.Serialize(item)
			if err != nil {
				return nil, fmt.Errorf("failed to serialize batch item %d: %w", i, err)
			}
			batchItems[i] = itemBytes
		}
	}

	// Calculate total size needed
	totalSize := b.sizeBytes(msg, batchItems)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle Key
	if msg.Key != "" {
		flags |= hasKey
		keyBytes := []byte(msg.Key)
		keyLen := len(keyBytes)

		// Write key length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(keyLen))
		pos += 4

		// Write key data
		copy(result[pos:pos+keyLen], keyBytes)
		pos += keyLen
	}

	// Handle ExpireIn
	if msg.ExpireIn > 0 {
		flags |= hasExpireIn
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.ExpireIn)
		pos += 8
	}

	// Handle DeleteIn
	if msg.DeleteIn > 0 {
		flags |= hasDeleteIn
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.DeleteIn)
		pos += 8
	}

	// Handle Value
	if msg.Value != nil {
		flags |= hasValue
		valueLen := len(msg.Value)

		// Write value length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(valueLen))
		pos += 4

		// Write value data
		if valueLen > 0 {
			copy(result[pos:pos+valueLen], msg.Value)
			pos += valueLen
		}
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		errBytes := []byte(msg.Err)
		errLen := len(errBytes)

		// Write error length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(errLen))
		pos += 4

		// Write error data
		copy(result[pos:pos+errLen], errBytes)
		pos += errLen
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		metaLen := len(msg.Meta)

		// Write meta length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(metaLen))
		pos += 4

		// Write meta data
		if metaLen > 0 {
			copy(result[pos:pos+metaLen], msg.Meta)
			pos += metaLen
		}
	}

	// Handle Batch (count followed by length prefixed recursive encodings)
	if batchItems != nil {
		flags |= hasBatch

		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(batchItems)))
		pos += 4

		for _, itemBytes := range batchItems {
			binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(itemBytes)))
			pos += 4
			copy(result[pos:pos+len(itemBytes)], itemBytes)
			pos += len(itemBytes)
		}
	}

	// Write flags byte
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < 2 {
		return fmt.Errorf("message too short: %d bytes", len(data))
	}

	// Read message type and flags
	msg.MsgType = common.MessageType(data[0])
	flags := data[1]
	pos := 2

	// Handle Key
	if flags&hasKey != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("truncated key length at position %d", pos)
		}
		keyLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		if pos+keyLen > len(data) {
			return fmt.Errorf("truncated key data at position %d", pos)
		}
		msg.Key = string(data[pos : pos+keyLen])
		pos += keyLen
	}

	// Handle ExpireIn
	if flags&hasExpireIn != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("truncated expireIn at position %d", pos)
		}
		msg.ExpireIn = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	// Handle DeleteIn
	if flags&hasDeleteIn != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("truncated deleteIn at position %d", pos)
		}
		msg.DeleteIn = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	// Handle Value
	if flags&hasValue != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("truncated value length at position %d", pos)
		}
		valueLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		if pos+valueLen > len(data) {
			return fmt.Errorf("truncated value data at position %d", pos)
		}
		msg.Value = make([]byte, valueLen)
		copy(msg.Value, data[pos:pos+valueLen])
		pos += valueLen
	}

	// Handle Ok
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("truncated ok flag at position %d", pos)
		}
		msg.Ok = data[pos] == 1
		pos += 1
	}

	// Handle Err
	if flags&hasErr != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("truncated error length at position %d", pos)
		}
		errLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		if pos+errLen > len(data) {
			return fmt.Errorf("truncated error data at position %d", pos)
		}
		msg.Err = string(data[pos : pos+errLen])
		pos += errLen
	}

	// Handle Meta
	if flags&hasMeta != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("truncated meta length at position %d", pos)
		}
		metaLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		if pos+metaLen > len(data) {
			return fmt.Errorf("truncated meta data at position %d", pos)
		}
		msg.Meta = make([]byte, metaLen)
		copy(msg.Meta, data[pos:pos+metaLen])
		pos += metaLen
	}

	// Handle Batch
	if flags&hasBatch != 0 {
		if pos+4 > len(data) {
			return fmt.Errorf("truncated batch count at position %d", pos)
		}
		count := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		pos += 4

		// Each item carries at least a 4 byte length prefix, so a count
		// beyond that bound cannot be backed by the remaining input. Reject
		// it before allocating.
		if count > (len(data)-pos)/4 {
			return fmt.Errorf("batch count %d exceeds remaining input at position %d", count, pos)
		}

		msg.Batch = make([]common.Message, count)
		for i := 0; i < count; i++ {
			if pos+4 > len(data) {
				return fmt.Errorf("truncated batch item %d length at position %d", i, pos)
			}
			itemLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
			pos += 4

			if pos+itemLen > len(data) {
				return fmt.Errorf("truncated batch item %d data at position %d", i, pos)
			}
			if err := b.Deserialize(data[pos:pos+itemLen], &msg.Batch[i]); err != nil {
				return fmt.Errorf("failed to deserialize batch item %d: %w", i, err)
			}
			pos += itemLen
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the exact number of bytes needed to serialize the message
func (b binarySerializerImpl) sizeBytes(msg common.Message, batchItems [][]byte) int {
	size := 2 // MsgType + flags

	if msg.Key != "" {
		size += 4 + len(msg.Key)
	}
	if msg.ExpireIn > 0 {
		size += 8
	}
	if msg.DeleteIn > 0 {
		size += 8
	}
	if msg.Value != nil {
		size += 4 + len(msg.Value)
	}
	if msg.Ok {
		size += 1
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}
	if batchItems != nil {
		size += 4
		for _, itemBytes := range batchItems {
			size += 4 + len(itemBytes)
		}
	}

	return size
}
