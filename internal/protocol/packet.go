package protocol

import "fmt"

// Packet is any struct protocol-v14 can put on the wire. PacketID is fixed
// per type — protocol-v14 packets are not length-prefixed, so Decode relies
// on the id byte alone to pick a struct and a reader that knows how far to
// advance the cursor for that struct's shape.
type Packet interface {
	PacketID() byte
}

// factory constructs a zero-valued packet for a given id so Decode can fill
// it in via reflection.
type factory func() Packet

// registry maps a protocol State to the id -> factory table valid in it.
// Handshake and Play share most packet ids with Status/Login since the
// legacy protocol keeps one flat id space; a given id's meaning never
// changes across states, but which ids are legal to receive does.
var registry = map[State]map[byte]factory{
	Handshake: {
		0x02: func() Packet { return &HandshakeSB{} },
	},
	Login: {
		0x01: func() Packet { return &LoginRequestSB{} },
		0xFF: func() Packet { return &DisconnectCB{} },
	},
	Play: {},
}

func register(state State, id byte, f factory) {
	m, ok := registry[state]
	if !ok {
		m = map[byte]factory{}
		registry[state] = m
	}
	m[id] = f
}

// lookup finds the factory for id in state, falling back to Play's table
// since most client->server traffic after login is state-independent.
func lookup(state State, id byte) (factory, error) {
	if m, ok := registry[state]; ok {
		if f, ok := m[id]; ok {
			return f, nil
		}
	}
	if state != Play {
		if f, ok := registry[Play][id]; ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("protocol: unknown packet id 0x%02X in state %s", id, state)
}
