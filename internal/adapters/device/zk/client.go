// Package zk is a read-only client for ZK-protocol time clocks over TCP.
// It can connect, read the user directory and attendance log, re-enable
// the device and disconnect. Nothing else is ever sent.
package zk

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"biosync/internal/core/domain"
	"biosync/internal/core/ports"
)

// DialFunc opens the transport; net.Dialer.DialContext by default.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	// Location is the zone the device clock runs in. Naive device
	// timestamps are interpreted in it.
	Location *time.Location
	Dial     DialFunc
	Logger   *slog.Logger
}

// Client describes one device. It holds no connection itself.
type Client struct {
	id      string
	address string
	opts    Options
}

var _ ports.Device = (*Client)(nil)

func NewClient(id, address string, opts Options) *Client {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Dial == nil {
		var d net.Dialer
		opts.Dial = d.DialContext
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{id: id, address: address, opts: opts}
}

func (c *Client) ID() string      { return c.id }
func (c *Client) Address() string { return c.address }

// Connect dials the device and opens a protocol session.
func (c *Client) Connect(ctx context.Context) (ports.DeviceConn, error) {
	nc, err := c.opts.Dial(ctx, "tcp", c.address)
	if err != nil {
		return nil, err
	}
	s := &session{
		conn:  nc,
		reply: ushrtMax - 1,
		loc:   c.opts.Location,
		log:   c.opts.Logger.With("device", c.id),
	}
	resp, err := s.command(ctx, cmdConnect, nil)
	if err != nil {
		nc.Close()
		return nil, err
	}
	if resp.cmd == ackUnauth {
		nc.Close()
		return nil, fmt.Errorf("zk: device at %s requires a comm key", c.address)
	}
	if !resp.ok() {
		nc.Close()
		return nil, fmt.Errorf("zk: connect rejected with code %d", resp.cmd)
	}
	s.id = resp.session
	s.log.Debug("session opened", "session", s.id)
	return s, nil
}

type session struct {
	mu    sync.Mutex
	conn  net.Conn
	id    uint16
	reply uint16
	loc   *time.Location
	log   *slog.Logger
	users []user
}

var _ ports.DeviceConn = (*session)(nil)

// command sends one request and reads the immediate reply.
func (s *session) command(ctx context.Context, cmd uint16, data []byte) (packet, error) {
	if !readOnly[cmd] {
		return packet{}, fmt.Errorf("zk: command %d is not allowed", cmd)
	}
	stop := s.bind(ctx)
	defer stop()

	if _, err := s.conn.Write(encodePacket(cmd, s.id, s.reply, data)); err != nil {
		return packet{}, s.ctxErr(ctx, err)
	}
	resp, err := readPacket(s.conn)
	if err != nil {
		return packet{}, s.ctxErr(ctx, err)
	}
	s.reply = resp.reply
	return resp, nil
}

// bind ties socket deadlines to ctx for the duration of one exchange.
func (s *session) bind(ctx context.Context) func() {
	if dl, ok := ctx.Deadline(); ok {
		_ = s.conn.SetDeadline(dl)
	} else {
		_ = s.conn.SetDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetDeadline(time.Now())
	})
	return func() { stop() }
}

func (s *session) ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return context.DeadlineExceeded
	}
	return err
}

func (s *session) sizes(ctx context.Context) (users, records int, err error) {
	resp, err := s.command(ctx, cmdGetFreeSizes, nil)
	if err != nil {
		return 0, 0, err
	}
	if !resp.ok() {
		return 0, 0, fmt.Errorf("zk: read sizes failed with code %d", resp.cmd)
	}
	if len(resp.data) < 80 {
		return 0, 0, nil
	}
	field := func(i int) int { return int(int32(binary.LittleEndian.Uint32(resp.data[i*4:]))) }
	return field(4), field(8), nil
}

// readBuffer pulls a whole table through the device's buffered transfer.
func (s *session) readBuffer(ctx context.Context, cmd uint16, fct int32) ([]byte, error) {
	req := make([]byte, 11)
	req[0] = 1
	binary.LittleEndian.PutUint16(req[1:], cmd)
	binary.LittleEndian.PutUint32(req[3:], uint32(fct))

	resp, err := s.command(ctx, cmdPrepareBuffer, req)
	if err != nil {
		return nil, err
	}
	if resp.cmd == cmdData {
		return resp.data, nil
	}
	if !resp.ok() || len(resp.data) < 5 {
		return nil, fmt.Errorf("zk: prepare buffer failed with code %d", resp.cmd)
	}

	size := int(binary.LittleEndian.Uint32(resp.data[1:5]))
	out := make([]byte, 0, size)
	for start := 0; start < size; {
		n := min(size-start, maxChunk)
		chunk, err := s.readChunk(ctx, start, n)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		start += n
	}

	if _, err := s.command(ctx, cmdFreeData, nil); err != nil {
		s.log.Warn("free data failed", "error", err)
	}
	return out, nil
}

func (s *session) readChunk(ctx context.Context, start, size int) ([]byte, error) {
	req := make([]byte, 8)
	binary.LittleEndian.PutUint32(req[0:], uint32(start))
	binary.LittleEndian.PutUint32(req[4:], uint32(size))

	resp, err := s.command(ctx, cmdReadBuffer, req)
	if err != nil {
		return nil, err
	}
	switch resp.cmd {
	case cmdData:
		return resp.data, nil
	case cmdPrepareData:
	default:
		return nil, fmt.Errorf("zk: read chunk at %d failed with code %d", start, resp.cmd)
	}
	if len(resp.data) < 4 {
		return nil, fmt.Errorf("zk: prepare data without size")
	}
	want := int(binary.LittleEndian.Uint32(resp.data[:4]))

	stop := s.bind(ctx)
	defer stop()
	data := make([]byte, 0, want)
	for len(data) < want {
		p, err := readPacket(s.conn)
		if err != nil {
			return nil, s.ctxErr(ctx, err)
		}
		if p.cmd != cmdData {
			return nil, fmt.Errorf("zk: expected data packet, got code %d", p.cmd)
		}
		data = append(data, p.data...)
	}
	ack, err := readPacket(s.conn)
	if err != nil {
		return nil, s.ctxErr(ctx, err)
	}
	if ack.cmd != ackOK {
		return nil, fmt.Errorf("zk: chunk not acknowledged, got code %d", ack.cmd)
	}
	s.reply = ack.reply
	return data, nil
}

func (s *session) loadUsers(ctx context.Context) ([]user, error) {
	if s.users != nil {
		return s.users, nil
	}
	count, _, err := s.sizes(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		s.users = []user{}
		return s.users, nil
	}
	data, err := s.readBuffer(ctx, cmdUserTempRRQ, fctUser)
	if err != nil {
		return nil, err
	}
	users, err := parseUsers(data, count)
	if err != nil {
		return nil, err
	}
	s.users = users
	return users, nil
}

// Directory returns the enrolled users. Users whose id is not numeric are
// skipped since punches can only reference numeric ids.
func (s *session) Directory(ctx context.Context) ([]domain.DirectoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DirectoryEntry, 0, len(users))
	for _, u := range users {
		id, err := strconv.Atoi(u.userID)
		if err != nil || id < 0 {
			s.log.Warn("skipping user with non numeric id", "user_id", u.userID)
			continue
		}
		out = append(out, domain.DirectoryEntry{ID: id, Name: u.name})
	}
	return out, nil
}

// Punches returns the full attendance log in device order.
func (s *session) Punches(ctx context.Context) ([]domain.RawPunch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, records, err := s.sizes(ctx)
	if err != nil {
		return nil, err
	}
	if records == 0 {
		return nil, nil
	}
	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	data, err := s.readBuffer(ctx, cmdAttLogRRQ, 0)
	if err != nil {
		return nil, err
	}
	return parseAttendance(data, records, users, s.loc)
}

func (s *session) Enable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.command(ctx, cmdEnableDevice, nil)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return fmt.Errorf("zk: enable failed with code %d", resp.cmd)
	}
	return nil
}

// Disconnect ends the session and closes the socket. The socket is closed
// even when the exit command fails.
func (s *session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, exitErr := s.command(ctx, cmdExit, nil)
	closeErr := s.conn.Close()
	if exitErr != nil {
		return exitErr
	}
	return closeErr
}
