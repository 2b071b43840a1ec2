// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package endpoint

import (
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/jetsetilly/gopher2600netplay/curated"
	"github.com/jetsetilly/gopher2600netplay/logger"
)

// ErrBindFailed is the curated pattern used when Bind cannot acquire the
// requested port.
const ErrBindFailed = "endpoint: bind failed on port %d: %v"

// ErrRecvTimeout is the curated pattern used when Recv's timeout elapses
// with no datagram received.
const ErrRecvTimeout = "endpoint: recv timeout"

// ErrClosed is the curated pattern used when an operation is attempted on a
// closed Endpoint.
const ErrClosed = "endpoint: use of closed endpoint"

// Endpoint is a stateless UDP datagram transport. It is safe for concurrent
// use: Send may be called from the emulator thread while Recv is polled by
// the network receive thread.
type Endpoint struct {
	conn  *net.UDPConn
	fault *FaultInjection
}

// New creates an unbound Endpoint. Call Bind before Send/Recv.
func New() *Endpoint {
	return &Endpoint{}
}

// Bind opens the local UDP socket on port. Port 0 requests an ephemeral
// port, matching spec.md's allowance for Connect/Observe mode.
func (e *Endpoint) Bind(port int) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return curated.Errorf(ErrBindFailed, port, err)
	}
	e.conn = conn
	return nil
}

// LocalPort returns the port the endpoint is bound to, useful when Bind was
// called with port 0.
func (e *Endpoint) LocalPort() int {
	if e.conn == nil {
		return 0
	}
	return e.conn.LocalAddr().(*net.UDPAddr).Port
}

// SetFaultInjection installs (or clears, if f is nil) a FaultInjection
// profile. Only affects subsequent Send calls.
func (e *Endpoint) SetFaultInjection(f *FaultInjection) {
	e.fault = f
}

// Send transmits payload to addr. Payload length-delimiting is the
// responsibility of the caller (the peer channel, via the wire package);
// the endpoint itself sends exactly the bytes given in a single datagram.
//
// If a FaultInjection profile is installed, Send may silently drop the
// datagram, or delay its transmission, without returning an error — from
// the caller's point of view a dropped datagram looks exactly like one lost
// in transit.
func (e *Endpoint) Send(addr netip.AddrPort, payload []byte) error {
	if e.conn == nil {
		return curated.Errorf(ErrClosed)
	}

	if e.fault != nil {
		if e.fault.shouldDrop() {
			logger.Logf(logger.Allow, "endpoint", "fault injection: dropped datagram to %s", addr)
			return nil
		}
		if delay := e.fault.latency(); delay > 0 {
			conn := e.conn
			go func() {
				time.Sleep(delay)
				_, _ = conn.WriteToUDPAddrPort(payload, addr)
			}()
			return nil
		}
	}

	_, err := e.conn.WriteToUDPAddrPort(payload, addr)
	return err
}

// Recv blocks until a datagram arrives or timeout elapses, returning the
// sender's address and the raw payload. Returns a curated ErrRecvTimeout
// error on timeout.
func (e *Endpoint) Recv(timeout time.Duration) (netip.AddrPort, []byte, error) {
	if e.conn == nil {
		return netip.AddrPort{}, nil, curated.Errorf(ErrClosed)
	}

	if err := e.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return netip.AddrPort{}, nil, curated.Errorf("endpoint: %v", err)
	}

	buf := make([]byte, 65535)
	n, addr, err := e.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return netip.AddrPort{}, nil, curated.Errorf(ErrRecvTimeout)
		}
		return netip.AddrPort{}, nil, curated.Errorf("endpoint: recv: %v", err)
	}

	// a dual-stack socket reports IPv4 senders as IPv4-mapped IPv6
	// addresses; unmap them so they compare equal to the plain IPv4
	// addresses callers dial.
	return netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port()), buf[:n], nil
}

// Close releases the underlying socket. Idempotent: closing an endpoint
// that is already closed, or was never bound, is a no-op.
func (e *Endpoint) Close() error {
	if e.conn == nil {
		return nil
	}
	conn := e.conn
	e.conn = nil
	return conn.Close()
}

// String satisfies fmt.Stringer for logging convenience.
func (e *Endpoint) String() string {
	if e.conn == nil {
		return "endpoint(unbound)"
	}
	return fmt.Sprintf("endpoint(%s)", e.conn.LocalAddr())
}
