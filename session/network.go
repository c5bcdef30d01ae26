package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/danielfalbo/picturephone/capture"
	"github.com/danielfalbo/picturephone/protocol"
	"github.com/danielfalbo/picturephone/raster"
	"github.com/danielfalbo/picturephone/terminal"
)

// Role selects which side of a networked session we are.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

// NetworkParams configures how a networked session establishes its
// connection.
type NetworkParams struct {
	Role   Role
	Port   int
	PeerIP string
}

const listenBacklog = 3

// Listen binds a TCP listener with SO_REUSEADDR on port. net.Listen
// alone does not expose SO_REUSEADDR, so a ListenConfig.Control
// callback sets it via a raw syscall before bind. The listen backlog
// is the Go runtime's system default; listenBacklog is not applied.
func Listen(ctx context.Context, port int) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	return lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", port))
}

// Accept waits for one inbound connection, or returns ctx.Err() if ctx
// is canceled first (e.g. the user pressed Ctrl-C while waiting).
func Accept(ctx context.Context, ln net.Listener) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conn, err := ln.Accept()
		done <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		ln.Close()
		<-done // let the Accept goroutine unwind
		return nil, ctx.Err()
	case r := <-done:
		return r.conn, r.err
	}
}

// Dial connects to host:port, returning ctx.Err() if ctx is canceled
// first.
func Dial(ctx context.Context, host string, port int) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", host, port))
}

// Establish brings up the connection for the configured role.
func Establish(ctx context.Context, p NetworkParams) (net.Conn, error) {
	if p.Role == RoleServer {
		ln, err := Listen(ctx, p.Port)
		if err != nil {
			return nil, fmt.Errorf("session: listen: %w", err)
		}
		defer ln.Close()
		return Accept(ctx, ln)
	}
	return Dial(ctx, p.PeerIP, p.Port)
}

type sockRead struct {
	data []byte
	err  error
}

// RunNetwork drives a full networked session over conn, which the
// caller has already established (see Establish): send our initial
// Config, then run the single
// cooperative event loop over stdin, socket, resize notifications,
// and the frame-send deadline until ctx is canceled, Ctrl-C is
// pressed, or the peer closes the connection.
func RunNetwork(ctx context.Context, term *terminal.Presenter, cam *capture.Handle, ramp raster.Ramp, stdin io.Reader, conn net.Conn, st *State) error {
	sessionID := uuid.New()
	sessionStart := time.Now()
	var bytesSent, bytesRecv uint64
	log.Printf("session[%s]: established with %s", sessionID, conn.RemoteAddr())
	defer conn.Close()
	defer func() {
		logThroughput(sessionID, bytesSent, bytesRecv, time.Since(sessionStart))
	}()

	rows, cols, err := term.QueryWindowSize()
	if err == nil {
		st.SetMyRender(cols, terminal.UsableRows(rows))
	}
	if err := protocol.WriteConfig(conn, st.MyRenderW, st.MyRenderH); err != nil {
		return fmt.Errorf("session[%s]: initial config: %w", sessionID, err)
	}

	keys := make(chan byte, 16)
	go readKeys(stdin, keys)

	socketEvents := make(chan sockRead)
	go func() {
		buf := make([]byte, protocol.AccumulatorCap)
		for {
			n, err := conn.Read(buf)
			data := append([]byte(nil), buf[:n]...)
			socketEvents <- sockRead{data: data, err: err}
			if err != nil {
				return
			}
		}
	}()

	resizeC := term.InstallResizeHandler()
	defer term.StopResizeHandler()

	acc := protocol.NewAccumulator()
	var buf []byte

	nextDeadline := time.Now()
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	resetTimer := func() {
		d := time.Until(nextDeadline)
		if d < 0 {
			d = 0
		}
		timer.Reset(d)
	}
	resetTimer()

	statusMsg := ""

	for {
		select {
		case <-ctx.Done():
			log.Printf("session[%s]: canceled", sessionID)
			return nil

		case b := <-keys:
			if b == ctrlC {
				return nil
			}
			if b == 'v' || b == 'V' {
				if hasPeer := st.ToggleView(); hasPeer {
					rows, cols, err := term.QueryWindowSize()
					if err == nil {
						usable := terminal.UsableRows(rows)
						buf = redraw(buf, cam, ramp, st, cols, usable, statusMsg)
						_ = term.WriteBatch(buf)
					}
				}
			}

		case ev := <-socketEvents:
			if ev.err != nil {
				if ev.err == io.EOF {
					statusMsg = "Connection closed by peer."
					log.Printf("session[%s]: %s", sessionID, statusMsg)
					return nil
				}
				log.Printf("session[%s]: socket read error: %v", sessionID, ev.err)
				return ev.err
			}
			bytesRecv += uint64(len(ev.data))
			redrew := false
			ferr := acc.Feed(ev.data, func(pkt protocol.Packet) {
				switch pkt.Type {
				case protocol.TypeConfig:
					st.ApplyPeerConfig(pkt.W, pkt.H)
				case protocol.TypePicture:
					st.ApplyPeerPicture(pkt.W, pkt.H, pkt.Payload)
					redrew = true
				}
			})
			if ferr != nil {
				log.Printf("session[%s]: %v, closing session", sessionID, ferr)
				return ferr
			}
			if redrew {
				rows, cols, err := term.QueryWindowSize()
				if err == nil {
					usable := terminal.UsableRows(rows)
					buf = redraw(buf, cam, ramp, st, cols, usable, statusMsg)
					_ = term.WriteBatch(buf)
				}
			}

		case <-resizeC:
			// handled by the size check below on every iteration

		case <-timer.C:
			cam.Pull()
			var f capture.Frame
			if cam.GetFrame(&f) {
				w, h := st.PeerRenderSize()
				payload := make([]byte, w*h)
				for y := 0; y < h; y++ {
					for x := 0; x < w; x++ {
						ix := (x * f.Width) / w
						iy := (y * f.Height) / h
						off := (iy*f.Width + ix) * 4
						payload[y*w+x] = raster.Luminance(f.Pixels[off+0], f.Pixels[off+1], f.Pixels[off+2])
					}
				}
				if err := protocol.WritePicture(conn, w, h, payload); err != nil {
					if !isTransientWriteErr(err) {
						log.Printf("session[%s]: send failed: %v", sessionID, err)
					}
				} else {
					bytesSent += uint64(len(payload))
				}
			}
			nextDeadline = time.Now().Add(frameInterval)
		}

		if rows, cols, err := term.QueryWindowSize(); err == nil {
			if st.SetMyRender(cols, terminal.UsableRows(rows)) {
				_ = protocol.WriteConfig(conn, st.MyRenderW, st.MyRenderH)
			}
		}
		resetTimer()
	}
}

func isTransientWriteErr(err error) bool {
	var netErr net.Error
	if ok := asNetError(err, &netErr); ok {
		return netErr.Timeout()
	}
	return false
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if !ok {
		return false
	}
	*target = ne
	return true
}

// logThroughput reports the bytes sent and received over a session's
// lifetime in a human-readable form. RunNetwork calls it once, when
// the session ends.
func logThroughput(sessionID uuid.UUID, bytesSent, bytesRecv uint64, elapsed time.Duration) {
	log.Printf("session[%s]: sent %s, received %s over %s", sessionID,
		humanize.Bytes(bytesSent), humanize.Bytes(bytesRecv), elapsed)
}
