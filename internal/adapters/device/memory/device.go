// Package memory is an in-process device backed by a CSV fixture. It lets
// the sync run offline and gives tests a device with real release
// bookkeeping.
package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"biosync/internal/core/domain"
	"biosync/internal/core/ports"
)

// TimestampLayout is the punch timestamp format in fixture files.
const TimestampLayout = "2006-01-02 15:04:05"

type Device struct {
	id  string
	loc *time.Location

	mu        sync.RWMutex
	directory map[int]string
	punches   []domain.RawPunch
	open      int
	enabled   int
}

var _ ports.Device = (*Device)(nil)

// NewDevice creates an empty device whose naive timestamps are read in loc.
func NewDevice(id string, loc *time.Location) *Device {
	if loc == nil {
		loc = time.Local
	}
	return &Device{
		id:        id,
		loc:       loc,
		directory: make(map[int]string),
	}
}

func (d *Device) ID() string      { return d.id }
func (d *Device) Address() string { return "memory://" + d.id }

// LoadFromCSV adds the rows of a fixture file. The first line is a header.
// Two-column rows are directory entries (employee_id,name); three-column
// rows are punches (employee_id,timestamp,status).
func (d *Device) LoadFromCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return d.Load(f)
}

// Load reads fixture rows from r.
func (d *Device) Load(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line++
		if line == 1 || len(row) == 0 || strings.HasPrefix(row[0], "#") {
			continue
		}
		if err := d.addRow(row); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func (d *Device) addRow(row []string) error {
	id, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return fmt.Errorf("employee id %q: %w", row[0], err)
	}
	switch len(row) {
	case 2:
		d.AddUser(id, row[1])
	case 3:
		ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(row[1]), d.loc)
		if err != nil {
			return err
		}
		status, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			return fmt.Errorf("status %q: %w", row[2], err)
		}
		d.AddPunch(domain.RawPunch{EmployeeID: id, Timestamp: ts, StatusCode: status})
	default:
		return fmt.Errorf("expected 2 or 3 columns, got %d", len(row))
	}
	return nil
}

func (d *Device) AddUser(id int, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.directory[id] = name
}

func (d *Device) AddPunch(p ...domain.RawPunch) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.punches = append(d.punches, p...)
}

// Count returns the number of directory entries and punches held.
func (d *Device) Count() (users, punches int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.directory), len(d.punches)
}

// OpenSessions reports sessions that were connected but not disconnected.
func (d *Device) OpenSessions() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.open
}

// Enables reports how many times any session re-enabled the device.
func (d *Device) Enables() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}

func (d *Device) Connect(ctx context.Context) (ports.DeviceConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open++
	return &conn{dev: d}, nil
}

type conn struct {
	dev    *Device
	closed bool
}

// Directory returns a snapshot ordered by id.
func (c *conn) Directory(ctx context.Context) ([]domain.DirectoryEntry, error) {
	if err := c.usable(ctx); err != nil {
		return nil, err
	}
	c.dev.mu.RLock()
	defer c.dev.mu.RUnlock()

	out := make([]domain.DirectoryEntry, 0, len(c.dev.directory))
	for id, name := range c.dev.directory {
		out = append(out, domain.DirectoryEntry{ID: id, Name: name})
	}
	slices.SortFunc(out, func(a, b domain.DirectoryEntry) int { return a.ID - b.ID })
	return out, nil
}

// Punches returns a copy of the log in insertion order.
func (c *conn) Punches(ctx context.Context) ([]domain.RawPunch, error) {
	if err := c.usable(ctx); err != nil {
		return nil, err
	}
	c.dev.mu.RLock()
	defer c.dev.mu.RUnlock()
	return slices.Clone(c.dev.punches), nil
}

func (c *conn) Enable(ctx context.Context) error {
	if err := c.usable(ctx); err != nil {
		return err
	}
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	c.dev.enabled++
	return nil
}

func (c *conn) Disconnect() error {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.dev.open--
	return nil
}

var errClosed = errors.New("memory: session closed")

func (c *conn) usable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.dev.mu.RLock()
	defer c.dev.mu.RUnlock()
	if c.closed {
		return errClosed
	}
	return nil
}
