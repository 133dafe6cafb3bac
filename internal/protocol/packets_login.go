package protocol

// LoginRequestSB is the client's login packet: protocol version, username,
// and fields that were meaningful on the original multi-dimension client
// but are unused on a single-overworld deployment.
type LoginRequestSB struct {
	ProtocolVersion int32  `mc:"i32"`
	Username        string `mc:"string16"`
	MapSeed         int64  `mc:"i64"`
	Dimension       int8   `mc:"i8"`
}

func (p *LoginRequestSB) PacketID() byte { return 0x01 }

// LoginResponseCB is the server's reply once login succeeds: it hands the
// client its entity id and the world parameters it needs before Play
// packets start arriving.
type LoginResponseCB struct {
	EntityID    int32  `mc:"i32"`
	LevelType   string `mc:"string16"`
	ServerMode  int32  `mc:"i32"`
	Dimension   int8   `mc:"i8"`
	Difficulty  int8   `mc:"i8"`
	WorldHeight uint8  `mc:"u8"`
	MaxPlayers  uint8  `mc:"u8"`
}

func (p *LoginResponseCB) PacketID() byte { return 0x01 }

// DisconnectCB and DisconnectSB share shape and id: either side can send a
// disconnect/kick with a reason string.
type DisconnectCB struct {
	Reason string `mc:"string16"`
}

func (p *DisconnectCB) PacketID() byte { return 0xFF }

type DisconnectSB struct {
	Reason string `mc:"string16"`
}

func (p *DisconnectSB) PacketID() byte { return 0xFF }

func init() {
	register(Login, 0x01, func() Packet { return &LoginRequestSB{} })
	register(Login, 0xFF, func() Packet { return &DisconnectSB{} })
	register(Play, 0xFF, func() Packet { return &DisconnectSB{} })
}
