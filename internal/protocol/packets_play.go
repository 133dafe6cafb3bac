package protocol

// KeepAlive carries no payload past the id byte on either side; its struct
// exists only so the codec has something to hand back from Decode.
type KeepAlive struct{}

func (p *KeepAlive) PacketID() byte { return 0x00 }

// ChatCB and ChatSB move chat/command text in both directions; the client
// prefixes commands with '/', handled above the protocol layer.
type ChatCB struct {
	Message string `mc:"string16"`
}

func (p *ChatCB) PacketID() byte { return 0x03 }

type ChatSB struct {
	Message string `mc:"string16"`
}

func (p *ChatSB) PacketID() byte { return 0x03 }

// TimeUpdateCB pushes the world clock; the client free-runs it until the
// next update.
type TimeUpdateCB struct {
	Time int64 `mc:"i64"`
}

func (p *TimeUpdateCB) PacketID() byte { return 0x04 }

// EntityEquipmentCB announces a visible item change in one of an entity's
// four equipment slots.
type EntityEquipmentCB struct {
	EntityID int32 `mc:"i32"`
	Slot     int16 `mc:"i16"`
	ItemID   int16 `mc:"i16"`
	Damage   int16 `mc:"i16"`
}

func (p *EntityEquipmentCB) PacketID() byte { return 0x05 }

// SpawnPositionCB tells the client where its compass should point and where
// it respawns absent a bed.
type SpawnPositionCB struct {
	X int32 `mc:"i32"`
	Y int32 `mc:"i32"`
	Z int32 `mc:"i32"`
}

func (p *SpawnPositionCB) PacketID() byte { return 0x06 }

// UseEntitySB reports a left or right click on another entity (attack or
// interact).
type UseEntitySB struct {
	User      int32 `mc:"i32"`
	Target    int32 `mc:"i32"`
	LeftClick bool  `mc:"bool"`
}

func (p *UseEntitySB) PacketID() byte { return 0x07 }

// UpdateHealthCB reflects current health, food level and saturation.
type UpdateHealthCB struct {
	Health     int16   `mc:"i16"`
	Food       int16   `mc:"i16"`
	Saturation float32 `mc:"f32"`
}

func (p *UpdateHealthCB) PacketID() byte { return 0x08 }

// RespawnCB re-initializes the client's world after death or a dimension
// change.
type RespawnCB struct {
	Dimension  int8   `mc:"i8"`
	Difficulty int8   `mc:"i8"`
	Gamemode   int8   `mc:"i8"`
	WorldHeight int16 `mc:"i16"`
	MapSeed    int64  `mc:"i64"`
	LevelType  string `mc:"string16"`
}

func (p *RespawnCB) PacketID() byte { return 0x09 }

// PlayerSB is the bare on-ground flag sent when position/look haven't
// changed since the last tick.
type PlayerSB struct {
	OnGround bool `mc:"bool"`
}

func (p *PlayerSB) PacketID() byte { return 0x0A }

// PlayerPositionSB reports a movement-only update.
type PlayerPositionSB struct {
	X        float64 `mc:"f64"`
	Y        float64 `mc:"f64"`
	Stance   float64 `mc:"f64"`
	Z        float64 `mc:"f64"`
	OnGround bool    `mc:"bool"`
}

func (p *PlayerPositionSB) PacketID() byte { return 0x0B }

// PlayerLookSB reports a look-only update.
type PlayerLookSB struct {
	Yaw      float32 `mc:"f32"`
	Pitch    float32 `mc:"f32"`
	OnGround bool    `mc:"bool"`
}

func (p *PlayerLookSB) PacketID() byte { return 0x0C }

// PlayerPositionAndLookSB is the common combined update the client sends
// most ticks while moving.
type PlayerPositionAndLookSB struct {
	X        float64 `mc:"f64"`
	Y        float64 `mc:"f64"`
	Stance   float64 `mc:"f64"`
	Z        float64 `mc:"f64"`
	Yaw      float32 `mc:"f32"`
	Pitch    float32 `mc:"f32"`
	OnGround bool    `mc:"bool"`
}

func (p *PlayerPositionAndLookSB) PacketID() byte { return 0x0D }

// PlayerPositionAndLookCB is the same shape in the other direction, used
// both to sync a normal move and to force a teleport (the client must reply
// with a PlayerPositionAndLookSB echo after a server-initiated one).
type PlayerPositionAndLookCB struct {
	X        float64 `mc:"f64"`
	Stance   float64 `mc:"f64"`
	Y        float64 `mc:"f64"`
	Z        float64 `mc:"f64"`
	Yaw      float32 `mc:"f32"`
	Pitch    float32 `mc:"f32"`
	OnGround bool    `mc:"bool"`
}

func (p *PlayerPositionAndLookCB) PacketID() byte { return 0x0D }

// PlayerDiggingSB reports a dig-status transition: start, continue, stop, or
// the terminal "block broken" status.
type PlayerDiggingSB struct {
	Status byte  `mc:"u8"`
	X      int32 `mc:"i32"`
	Y      int8  `mc:"i8"`
	Z      int32 `mc:"i32"`
	Face   int8  `mc:"i8"`
}

func (p *PlayerDiggingSB) PacketID() byte { return 0x0E }

// PlayerBlockPlacementSB reports a right-click against a block face, or
// against open air with ItemID -1 when no block is targeted.
type PlayerBlockPlacementSB struct {
	X      int32 `mc:"i32"`
	Y      int8  `mc:"i8"`
	Z      int32 `mc:"i32"`
	Face   int8  `mc:"i8"`
	ItemID int16 `mc:"i16"`
	Amount int8  `mc:"i8"`
	Damage int16 `mc:"i16"`
}

func (p *PlayerBlockPlacementSB) PacketID() byte { return 0x0F }

// HeldItemChangeSB reports the hotbar slot the client now has selected.
type HeldItemChangeSB struct {
	Slot int16 `mc:"i16"`
}

func (p *HeldItemChangeSB) PacketID() byte { return 0x10 }

// AnimationCB/SB plays a swing/crouch/etc. animation on an entity.
type AnimationCB struct {
	EntityID int32 `mc:"i32"`
	Animate  int8  `mc:"i8"`
}

func (p *AnimationCB) PacketID() byte { return 0x12 }

// EntityActionSB reports crouch/uncrouch/sprint toggles.
type EntityActionSB struct {
	EntityID int32 `mc:"i32"`
	Action   int8  `mc:"i8"`
}

func (p *EntityActionSB) PacketID() byte { return 0x13 }

// NamedEntitySpawnCB introduces a remote player to the client.
type NamedEntitySpawnCB struct {
	EntityID int32  `mc:"i32"`
	Name     string `mc:"string16"`
	X        float64 `mc:"absint"`
	Y        float64 `mc:"absint"`
	Z        float64 `mc:"absint"`
	Yaw      float32 `mc:"angle"`
	Pitch    float32 `mc:"angle"`
	CurrentItem int16 `mc:"i16"`
}

func (p *NamedEntitySpawnCB) PacketID() byte { return 0x14 }

// PickupSpawnCB introduces a dropped item entity.
type PickupSpawnCB struct {
	EntityID int32   `mc:"i32"`
	ItemID   int16   `mc:"i16"`
	Count    int8    `mc:"i8"`
	Damage   int16   `mc:"i16"`
	X        float64 `mc:"absint"`
	Y        float64 `mc:"absint"`
	Z        float64 `mc:"absint"`
	Yaw      float32 `mc:"angle"`
	Pitch    float32 `mc:"angle"`
	Roll     float32 `mc:"angle"`
}

func (p *PickupSpawnCB) PacketID() byte { return 0x15 }

// CollectItemCB plays the pickup animation where item entity Collected
// flies to entity Collector before despawning.
type CollectItemCB struct {
	Collected int32 `mc:"i32"`
	Collector int32 `mc:"i32"`
}

func (p *CollectItemCB) PacketID() byte { return 0x16 }

// DestroyEntityCB tells the client to forget an entity id entirely.
type DestroyEntityCB struct {
	EntityID int32 `mc:"i32"`
}

func (p *DestroyEntityCB) PacketID() byte { return 0x1D }

// EntityCB is a bare keep-alive for an entity the client already knows
// about — no movement this tick.
type EntityCB struct {
	EntityID int32 `mc:"i32"`
}

func (p *EntityCB) PacketID() byte { return 0x1E }

// EntityRelativeMoveCB nudges an entity by a delta small enough to fit in a
// signed byte (the common case); larger deltas require EntityTeleportCB.
type EntityRelativeMoveCB struct {
	EntityID int32 `mc:"i32"`
	DX       int8  `mc:"i8"`
	DY       int8  `mc:"i8"`
	DZ       int8  `mc:"i8"`
}

func (p *EntityRelativeMoveCB) PacketID() byte { return 0x1F }

// EntityLookCB updates only yaw/pitch.
type EntityLookCB struct {
	EntityID int32   `mc:"i32"`
	Yaw      float32 `mc:"angle"`
	Pitch    float32 `mc:"angle"`
}

func (p *EntityLookCB) PacketID() byte { return 0x20 }

// EntityLookAndRelativeMoveCB combines the two when both changed this tick.
type EntityLookAndRelativeMoveCB struct {
	EntityID int32   `mc:"i32"`
	DX       int8    `mc:"i8"`
	DY       int8    `mc:"i8"`
	DZ       int8    `mc:"i8"`
	Yaw      float32 `mc:"angle"`
	Pitch    float32 `mc:"angle"`
}

func (p *EntityLookAndRelativeMoveCB) PacketID() byte { return 0x21 }

// EntityTeleportCB is the absolute-position fallback used whenever the
// delta since the last sent position no longer fits EntityRelativeMoveCB.
type EntityTeleportCB struct {
	EntityID int32   `mc:"i32"`
	X        float64 `mc:"absint"`
	Y        float64 `mc:"absint"`
	Z        float64 `mc:"absint"`
	Yaw      float32 `mc:"angle"`
	Pitch    float32 `mc:"angle"`
}

func (p *EntityTeleportCB) PacketID() byte { return 0x22 }

// EntityStatusCB drives client-side visual reactions (hurt flash, death
// animation, etc.) keyed by a status byte.
type EntityStatusCB struct {
	EntityID int32 `mc:"i32"`
	Status   int8  `mc:"i8"`
}

func (p *EntityStatusCB) PacketID() byte { return 0x26 }

// AttachEntityCB rides EntityID on top of VehicleID, or detaches when
// VehicleID is -1.
type AttachEntityCB struct {
	EntityID  int32 `mc:"i32"`
	VehicleID int32 `mc:"i32"`
}

func (p *AttachEntityCB) PacketID() byte { return 0x27 }

// EntityMetadataCB carries the raw encoded metadata stream (already packed
// by the metadata component encoder); a dedicated entry-by-entry struct
// tag isn't worth it for a format this irregular.
type EntityMetadataCB struct {
	EntityID int32  `mc:"i32"`
	Data     []byte `mc:"rest"`
}

func (p *EntityMetadataCB) PacketID() byte { return 0x28 }

// PreChunkCB tells the client to allocate (Mode true) or free (Mode false)
// storage for a chunk column before MapChunkCB data arrives or after it's
// no longer needed.
type PreChunkCB struct {
	ChunkX int32 `mc:"i32"`
	ChunkZ int32 `mc:"i32"`
	Mode   bool  `mc:"bool"`
}

func (p *PreChunkCB) PacketID() byte { return 0x32 }

// MapChunkCB ships one zlib-compressed chunk column. SizeX/Y/Z are always
// 15/127/15 (one full 16x128x16 column, zero-based inclusive size) in this
// implementation; partial columns are not produced.
type MapChunkCB struct {
	X         int32  `mc:"i32"`
	Y         int16  `mc:"i16"`
	Z         int32  `mc:"i32"`
	SizeX     uint8  `mc:"u8"`
	SizeY     uint8  `mc:"u8"`
	SizeZ     uint8  `mc:"u8"`
	Data      []byte `mc:"bytearray16"`
}

func (p *MapChunkCB) PacketID() byte { return 0x33 }

// MultiBlockChangeCB batches several single-block updates inside one
// chunk into one packet; CoordArray packs (x<<12 | z<<8 | y) per entry.
type MultiBlockChangeCB struct {
	ChunkX     int32  `mc:"i32"`
	ChunkZ     int32  `mc:"i32"`
	Coords     []byte `mc:"bytearray16"`
	BlockIDs   []byte `mc:"bytearray16"`
	Metadata   []byte `mc:"bytearray16"`
}

func (p *MultiBlockChangeCB) PacketID() byte { return 0x34 }

// BlockChangeCB updates a single block's id and metadata.
type BlockChangeCB struct {
	X        int32 `mc:"i32"`
	Y        int8  `mc:"i8"`
	Z        int32 `mc:"i32"`
	BlockID  int8  `mc:"i8"`
	Metadata int8  `mc:"i8"`
}

func (p *BlockChangeCB) PacketID() byte { return 0x35 }

// BlockActionCB drives block-specific client-side effects not covered by a
// BlockChangeCB (note block pitch, piston extend/retract, chest open).
type BlockActionCB struct {
	X        int32 `mc:"i32"`
	Y        int16 `mc:"i16"`
	Z        int32 `mc:"i32"`
	Byte1    int8  `mc:"i8"`
	Byte2    int8  `mc:"i8"`
}

func (p *BlockActionCB) PacketID() byte { return 0x36 }

// WindowOpenCB tells the client to display a non-inventory window (chest,
// furnace, workbench, dispenser).
type WindowOpenCB struct {
	WindowID  int8   `mc:"i8"`
	Type      int8   `mc:"i8"`
	Title     string `mc:"string16"`
	NumSlots  int8   `mc:"i8"`
}

func (p *WindowOpenCB) PacketID() byte { return 0x64 }

// WindowCloseCB/SB mirror a window dismissal in either direction.
type WindowCloseCB struct {
	WindowID int8 `mc:"i8"`
}

func (p *WindowCloseCB) PacketID() byte { return 0x65 }

type WindowCloseSB struct {
	WindowID int8 `mc:"i8"`
}

func (p *WindowCloseSB) PacketID() byte { return 0x65 }

// WindowClickSB reports a click in a slot; ItemID -1 means the cursor was
// empty. ShouldUseItem/RightClick and the carried slot payload let the
// window logic reconstruct the intended transfer.
type WindowClickSB struct {
	WindowID    int8   `mc:"i8"`
	Slot        int16  `mc:"i16"`
	RightClick  bool   `mc:"bool"`
	ActionNum   int16  `mc:"i16"`
	Shift       bool   `mc:"bool"`
	ItemID      int16  `mc:"i16"`
	ItemCount   int8   `mc:"i8"`
	ItemDamage  int16  `mc:"i16"`
}

func (p *WindowClickSB) PacketID() byte { return 0x66 }

// SetSlotCB pushes one slot's contents; ItemID -1 means empty.
type SetSlotCB struct {
	WindowID   int8  `mc:"i8"`
	Slot       int16 `mc:"i16"`
	ItemID     int16 `mc:"i16"`
	ItemCount  int8  `mc:"i8"`
	ItemDamage int16 `mc:"i16"`
}

func (p *SetSlotCB) PacketID() byte { return 0x67 }

// WindowItemsCB pushes an entire window's contents at once (sent on open
// and after a transaction rejection forces a resync). Payload is the
// caller-encoded slot array; slot encoding lives in the inventory package,
// not the wire layer.
type WindowItemsCB struct {
	WindowID int8   `mc:"i8"`
	Payload  []byte `mc:"rest"`
}

func (p *WindowItemsCB) PacketID() byte { return 0x68 }

// UpdateProgressBarCB drives furnace/brewing progress bars client-side.
type UpdateProgressBarCB struct {
	WindowID int8  `mc:"i8"`
	Bar      int16 `mc:"i16"`
	Value    int16 `mc:"i16"`
}

func (p *UpdateProgressBarCB) PacketID() byte { return 0x69 }

// TransactionCB/SB confirm or reject a WindowClickSB round-trip.
type TransactionCB struct {
	WindowID int8  `mc:"i8"`
	ActionNum int16 `mc:"i16"`
	Accepted bool  `mc:"bool"`
}

func (p *TransactionCB) PacketID() byte { return 0x6A }

type TransactionSB struct {
	WindowID  int8  `mc:"i8"`
	ActionNum int16 `mc:"i16"`
	Accepted  bool  `mc:"bool"`
}

func (p *TransactionSB) PacketID() byte { return 0x6A }

// UpdateSignSB/CB carry the four text lines of a sign edit.
type UpdateSignSB struct {
	X     int32  `mc:"i32"`
	Y     int16  `mc:"i16"`
	Z     int32  `mc:"i32"`
	Line1 string `mc:"string16"`
	Line2 string `mc:"string16"`
	Line3 string `mc:"string16"`
	Line4 string `mc:"string16"`
}

func (p *UpdateSignSB) PacketID() byte { return 0x82 }

// PlayerListItemCB adds or removes one entry in the client's tablist.
// Online false removes the named entry; Ping is ignored on removal.
type PlayerListItemCB struct {
	Name   string `mc:"string16"`
	Online bool   `mc:"bool"`
	Ping   int16  `mc:"i16"`
}

func (p *PlayerListItemCB) PacketID() byte { return 0xC9 }

func init() {
	for id, f := range map[byte]factory{
		0x00: func() Packet { return &KeepAlive{} },
		0x03: func() Packet { return &ChatSB{} },
		0x07: func() Packet { return &UseEntitySB{} },
		0x0A: func() Packet { return &PlayerSB{} },
		0x0B: func() Packet { return &PlayerPositionSB{} },
		0x0C: func() Packet { return &PlayerLookSB{} },
		0x0D: func() Packet { return &PlayerPositionAndLookSB{} }, // shares id with PlayerPositionAndLookCB
		0x0E: func() Packet { return &PlayerDiggingSB{} },
		0x0F: func() Packet { return &PlayerBlockPlacementSB{} },
		0x10: func() Packet { return &HeldItemChangeSB{} },
		0x12: func() Packet { return &AnimationCB{} },
		0x13: func() Packet { return &EntityActionSB{} },
		0x65: func() Packet { return &WindowCloseSB{} },
		0x66: func() Packet { return &WindowClickSB{} },
		0x6A: func() Packet { return &TransactionSB{} },
		0x82: func() Packet { return &UpdateSignSB{} },
	} {
		register(Play, id, f)
	}
}
