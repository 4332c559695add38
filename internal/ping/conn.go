package ping

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	// protocolICMP is the number of the Internet Control Message Protocol
	protocolICMP = 1

	// protocolICMPv6 is the IPv6 Next Header value for ICMPv6
	protocolICMPv6 = 58
)

var (
	errNotBound      = errors.New("need at least one bind address")
	errSocketMissing = errors.New("socket missing for address family")
)

type receiver func(body *icmp.Echo, icmpErr error, addr net.IPAddr, tRecv time.Time)

// echoConn sends echo requests. Replies are delivered to the receiver.
type echoConn interface {
	WriteTo(addr *net.IPAddr, seq int, data []byte) error
	Families() (v4, v6 bool)
	Close() error
}

// socketConn is an echoConn over ICMP sockets. Without privileges it uses
// unprivileged datagram sockets, where the kernel owns the echo identifier.
type socketConn struct {
	receiver   receiver
	privileged bool
	id         int

	conn4 net.PacketConn
	conn6 net.PacketConn
}

func openSocketConn(bind4, bind6 string, privileged bool, recv receiver) (*socketConn, error) {
	c := &socketConn{
		receiver:   recv,
		privileged: privileged,
		id:         os.Getpid() & 0xffff,
	}

	network4, network6 := "udp4", "udp6"
	if privileged {
		network4, network6 = "ip4:icmp", "ip6:ipv6-icmp"
	}

	var err error
	if c.conn4, err = listen(network4, bind4); err != nil {
		return nil, fmt.Errorf("icmp listen %s: %w", network4, err)
	}
	if c.conn6, err = listen(network6, bind6); err != nil {
		if bind4 == "" {
			return nil, fmt.Errorf("icmp listen %s: %w", network6, err)
		}
		// IPv6 is optional when IPv4 is bound.
		c.conn6 = nil
	}

	if c.conn4 == nil && c.conn6 == nil {
		return nil, errNotBound
	}

	if c.conn4 != nil {
		go c.readLoop(protocolICMP, c.conn4)
	}
	if c.conn6 != nil {
		go c.readLoop(protocolICMPv6, c.conn6)
	}

	return c, nil
}

// listen opens a new ICMP connection, if network and address are not empty.
func listen(network, address string) (net.PacketConn, error) {
	if network == "" || address == "" {
		return nil, nil
	}

	conn, err := icmp.ListenPacket(network, address)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *socketConn) Families() (v4, v6 bool) {
	return c.conn4 != nil, c.conn6 != nil
}

func (c *socketConn) Close() error {
	var errs []error
	if c.conn4 != nil {
		errs = append(errs, c.conn4.Close())
	}
	if c.conn6 != nil {
		errs = append(errs, c.conn6.Close())
	}
	return errors.Join(errs...)
}

// readLoop listens on the socket and hands every parsed reply to the receiver.
func (c *socketConn) readLoop(proto int, conn net.PacketConn) {
	rb := make([]byte, 1500)

	for {
		n, source, err := conn.ReadFrom(rb)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return // socket gone
		}

		var ipAddr net.IPAddr
		switch addr := source.(type) {
		case *net.UDPAddr:
			ipAddr.IP = addr.IP
			ipAddr.Zone = addr.Zone
		case *net.IPAddr:
			ipAddr = *addr
		}

		c.receive(proto, rb[:n], ipAddr, time.Now())
	}
}

// receive takes the raw message and tries to evaluate an ICMP response.
func (c *socketConn) receive(proto int, bytes []byte, addr net.IPAddr, t time.Time) {
	m, err := icmp.ParseMessage(proto, bytes)
	if err != nil {
		return
	}

	switch m.Type {
	case ipv4.ICMPTypeEchoReply, ipv6.ICMPTypeEchoReply:
		if echo, ok := m.Body.(*icmp.Echo); ok && c.ours(echo) {
			c.receiver(echo, nil, addr, t)
		}

	case ipv4.ICMPTypeDestinationUnreachable, ipv6.ICMPTypeDestinationUnreachable:
		body, ok := m.Body.(*icmp.DstUnreach)
		if !ok || body == nil {
			return
		}

		var inner []byte
		switch proto {
		case protocolICMP:
			hdr, err := ipv4.ParseHeader(body.Data)
			if err != nil || len(body.Data) < hdr.Len {
				return
			}
			inner = body.Data[hdr.Len:]
		case protocolICMPv6:
			if _, err := ipv6.ParseHeader(body.Data); err != nil || len(body.Data) < ipv6.HeaderLen {
				return
			}
			inner = body.Data[ipv6.HeaderLen:]
		default:
			return
		}

		// the quoted packet is our original echo request
		msg, err := icmp.ParseMessage(proto, inner)
		if err != nil {
			return
		}
		if echo, ok := msg.Body.(*icmp.Echo); ok && echo != nil && c.ours(echo) {
			c.receiver(echo, fmt.Errorf("%v", m.Type), addr, t)
		}
	}
}

// ours filters replies to other processes. Raw sockets see every echo reply.
func (c *socketConn) ours(echo *icmp.Echo) bool {
	return !c.privileged || echo.ID == c.id
}

// WriteTo marshals an echo request with the given sequence number and sends it.
func (c *socketConn) WriteTo(addr *net.IPAddr, seq int, data []byte) error {
	echo := icmp.Echo{
		Seq:  seq,
		Data: data,
	}
	msg := icmp.Message{
		Code: 0,
		Body: &echo,
	}

	var conn net.PacketConn
	if addr.IP.To4() != nil {
		msg.Type = ipv4.ICMPTypeEcho
		conn = c.conn4
	} else {
		msg.Type = ipv6.ICMPTypeEchoRequest
		conn = c.conn6
	}

	if conn == nil {
		return errSocketMissing
	}
	if c.privileged {
		echo.ID = c.id
	}

	wb, err := msg.Marshal(nil)
	if err != nil {
		return err
	}

	if c.privileged {
		_, err = conn.WriteTo(wb, addr)
	} else {
		_, err = conn.WriteTo(wb, &net.UDPAddr{IP: addr.IP, Zone: addr.Zone})
	}
	return err
}
