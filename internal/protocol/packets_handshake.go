package protocol

// HandshakeSB is the single handshake-state packet: the client announces
// its protocol version, username and intended host/port in one shot.
type HandshakeSB struct {
	ProtocolVersion uint8  `mc:"u8"`
	Username        string `mc:"string16"`
	Host            string `mc:"string16"`
	Port            int32  `mc:"i32"`
}

func (p *HandshakeSB) PacketID() byte { return 0x02 }

// HandshakeCB replies with a connection hash. Offline-mode deployments (the
// only mode this implementation supports) always reply "-".
type HandshakeCB struct {
	ConnectionHash string `mc:"string16"`
}

func (p *HandshakeCB) PacketID() byte { return 0x02 }

func init() {
	register(Handshake, 0x02, func() Packet { return &HandshakeSB{} })
}
