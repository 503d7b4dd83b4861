package zk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"biosync/internal/core/domain"
)

type user struct {
	uid    uint16
	userID string
	name   string
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(strings.ToValidUTF8(string(b), ""))
}

// decodeTime unpacks the device's packed local clock value.
func decodeTime(v uint32, loc *time.Location) time.Time {
	second := int(v % 60)
	v /= 60
	minute := int(v % 60)
	v /= 60
	hour := int(v % 24)
	v /= 24
	day := int(v%31) + 1
	v /= 31
	month := time.Month(v%12 + 1)
	v /= 12
	year := int(v) + 2000
	return time.Date(year, month, day, hour, minute, second, 0, loc)
}

// encodeTime is the inverse of decodeTime.
func encodeTime(t time.Time) uint32 {
	return uint32(((t.Year()-2000)*12*31+(int(t.Month())-1)*31+t.Day()-1)*(24*60*60) +
		(t.Hour()*60+t.Minute())*60 + t.Second())
}

// sizedPayload strips the leading total-size field and works out the record
// size from the count the device reported.
func sizedPayload(data []byte, count int) ([]byte, int, error) {
	if len(data) < 4 || count <= 0 {
		return nil, 0, nil
	}
	total := int(binary.LittleEndian.Uint32(data[:4]))
	body := data[4:]
	if total > len(body) {
		return nil, 0, fmt.Errorf("zk: payload declares %d bytes, got %d", total, len(body))
	}
	return body[:total], total / count, nil
}

func parseUsers(data []byte, count int) ([]user, error) {
	body, size, err := sizedPayload(data, count)
	if err != nil || body == nil {
		return nil, err
	}

	var out []user
	switch size {
	case 28:
		for ; len(body) >= 28; body = body[28:] {
			rec := body[:28]
			out = append(out, user{
				uid:    binary.LittleEndian.Uint16(rec[0:]),
				name:   cString(rec[8:16]),
				userID: strconv.FormatUint(uint64(binary.LittleEndian.Uint32(rec[24:])), 10),
			})
		}
	case 72:
		for ; len(body) >= 72; body = body[72:] {
			rec := body[:72]
			out = append(out, user{
				uid:    binary.LittleEndian.Uint16(rec[0:]),
				name:   cString(rec[11:35]),
				userID: cString(rec[48:72]),
			})
		}
	default:
		return nil, fmt.Errorf("zk: unsupported user record size %d", size)
	}
	return out, nil
}

func parseAttendance(data []byte, count int, users []user, loc *time.Location) ([]domain.RawPunch, error) {
	body, size, err := sizedPayload(data, count)
	if err != nil || body == nil {
		return nil, err
	}

	byUID := make(map[uint16]string, len(users))
	for _, u := range users {
		byUID[u.uid] = u.userID
	}

	var out []domain.RawPunch
	add := func(userID string, status byte, ts uint32) error {
		id, err := strconv.Atoi(userID)
		if err != nil {
			return fmt.Errorf("zk: non numeric user id %q: %w", userID, err)
		}
		out = append(out, domain.RawPunch{
			EmployeeID: id,
			Timestamp:  decodeTime(ts, loc),
			StatusCode: int(status),
		})
		return nil
	}

	switch size {
	case 8:
		for ; len(body) >= 8; body = body[8:] {
			uid := binary.LittleEndian.Uint16(body[0:])
			userID, ok := byUID[uid]
			if !ok {
				userID = strconv.Itoa(int(uid))
			}
			if err := add(userID, body[2], binary.LittleEndian.Uint32(body[3:])); err != nil {
				return nil, err
			}
		}
	case 16:
		for ; len(body) >= 16; body = body[16:] {
			userID := strconv.FormatUint(uint64(binary.LittleEndian.Uint32(body[0:])), 10)
			if err := add(userID, body[8], binary.LittleEndian.Uint32(body[4:])); err != nil {
				return nil, err
			}
		}
	case 40:
		for ; len(body) >= 40; body = body[40:] {
			if err := add(cString(body[2:26]), body[26], binary.LittleEndian.Uint32(body[27:])); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("zk: unsupported attendance record size %d", size)
	}
	return out, nil
}
