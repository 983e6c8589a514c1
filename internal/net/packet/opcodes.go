package packet

// Client → server opcodes.
const (
	C_OPCODE_ENTER_WORLD byte = 0x01
	C_OPCODE_MOVE        byte = 0x02
	C_OPCODE_DROP_ITEM   byte = 0x03
	C_OPCODE_PICKUP      byte = 0x04
	C_OPCODE_DOOR_TOGGLE byte = 0x05
	C_OPCODE_TELEPORT    byte = 0x06
	C_OPCODE_TILE_INFO   byte = 0x07
	C_OPCODE_QUIT        byte = 0x08
	C_OPCODE_HEADING     byte = 0x09
)

// Server → client opcodes.
const (
	S_OPCODE_ENTER_OK       byte = 0x80
	S_OPCODE_CHANGE_MAP     byte = 0x81
	S_OPCODE_POS_UPDATE     byte = 0x82
	S_OPCODE_CHAR_CREATE    byte = 0x83
	S_OPCODE_CHAR_REMOVE    byte = 0x84
	S_OPCODE_CHAR_MOVE      byte = 0x85
	S_OPCODE_NPC_CREATE     byte = 0x86
	S_OPCODE_OBJECT_CREATE  byte = 0x87
	S_OPCODE_OBJECT_DELETE  byte = 0x88
	S_OPCODE_BLOCK_POSITION byte = 0x89
	S_OPCODE_TILE_INFO      byte = 0x8A
	S_OPCODE_MOVE_REJECT    byte = 0x8B
	S_OPCODE_ENTER_FAIL     byte = 0x8C
)
