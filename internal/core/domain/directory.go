package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Directory maps device user ids to display names. It is built once per run
// from the snapshot read off the device and never goes back to the device.
type Directory struct {
	names map[string]string
	order []string
}

func NewDirectory(entries []DirectoryEntry) *Directory {
	d := &Directory{names: make(map[string]string, len(entries))}
	for _, e := range entries {
		key := strconv.Itoa(e.ID)
		if _, seen := d.names[key]; !seen {
			d.order = append(d.order, key)
		}
		d.names[key] = strings.TrimSpace(e.Name)
	}
	return d
}

// Resolve returns the name for id, or "User {id}" when the snapshot has no
// usable entry.
func (d *Directory) Resolve(id int) string {
	return d.ResolveKey(strconv.Itoa(id))
}

func (d *Directory) ResolveKey(id string) string {
	if d != nil {
		if name, ok := d.names[id]; ok && name != "" {
			return name
		}
	}
	return fmt.Sprintf("User %s", id)
}

// Employee builds the exported profile for id.
func (d *Directory) Employee(id string) Employee {
	return Employee{
		ID:         id,
		Name:       d.ResolveKey(id),
		Department: DefaultDepartment,
		Position:   DefaultPosition,
	}
}

// Employees lists every directory entry in snapshot order.
func (d *Directory) Employees() []Employee {
	if d == nil {
		return nil
	}
	out := make([]Employee, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.Employee(id))
	}
	return out
}
