package server

import (
	"github.com/codecat/go-enet"

	. "PiwPew/internal/game"
	"PiwPew/internal/protocol"
	"PiwPew/pkg/logger"
)

// Sender delivers an encoded packet to one client. The handler decides the
// recipient set itself (joined players only) and only sees this interface;
// tests substitute a recording fake.
type Sender interface {
	Send(id ClientID, ch protocol.Channel, data []byte)
}

// flagFor maps a logical channel to ENet delivery flags. Channels 0 and 1
// are both reliable; giving each its own ENet channel keeps their ordering
// scopes independent. Channel 2 is fire-and-forget.
func flagFor(ch protocol.Channel) enet.PacketFlags {
	if ch == protocol.ChannelUnreliable {
		return enet.PacketFlagUnsequenced
	}
	return enet.PacketFlagReliable
}

// enetSender resolves session ids to peers. A peer is attached the moment
// it connects so the join handshake can be answered, but nothing addresses
// it until the handler does. Lives on the tick goroutine with everything
// else; the peer table is only touched there.
type enetSender struct {
	peers map[ClientID]enet.Peer
}

func newEnetSender() *enetSender {
	return &enetSender{peers: make(map[ClientID]enet.Peer)}
}

func (s *enetSender) attach(id ClientID, peer enet.Peer) { s.peers[id] = peer }
func (s *enetSender) detach(id ClientID)                 { delete(s.peers, id) }

func (s *enetSender) Send(id ClientID, ch protocol.Channel, data []byte) {
	peer, ok := s.peers[id]
	if !ok {
		return
	}
	if err := peer.SendBytes(data, uint8(ch), flagFor(ch)); err != nil {
		logger.Log.WithError(err).WithField("client", id).Debug("send failed")
	}
}
