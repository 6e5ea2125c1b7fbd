package conduit

import (
	"bytes"
	"strconv"
)

// Format markers reported in the st_ifmt field.
const (
	ifmtDirectory = "S_IFDIR"
	ifmtRegular   = "S_IFREG"
	ifmtSymlink   = "S_IFLNK"
)

// StatInfo is the decoded metadata for one filesystem object. Sizes are
// byte counts; timestamps are converted from the device's nanosecond
// epoch values to milliseconds.
type StatInfo struct {
	Size        int64
	Blocks      int64
	NLink       int64
	Format      string
	LinkTarget  string
	MTimeMs     int64
	BirthtimeMs int64

	// Raw holds every key/value pair as reported, including fields the
	// typed accessors do not cover.
	Raw map[string]string
}

// IsDir reports whether the object is a directory.
func (s *StatInfo) IsDir() bool {
	return s.Format == ifmtDirectory
}

// IsLink reports whether the object is a symbolic link.
func (s *StatInfo) IsLink() bool {
	return s.Format == ifmtSymlink
}

// parseKeyValues decodes a null-delimited key/value response payload
// into a map. A trailing terminator and odd leftovers are ignored.
func parseKeyValues(payload []byte) map[string]string {
	fields := bytes.Split(payload, []byte{0})
	out := make(map[string]string, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		out[string(fields[i])] = string(fields[i+1])
	}
	return out
}

// parseStat builds a StatInfo from a key/value map.
func parseStat(kv map[string]string) *StatInfo {
	info := &StatInfo{
		Size:        parseInt(kv["st_size"]),
		Blocks:      parseInt(kv["st_blocks"]),
		NLink:       parseInt(kv["st_nlink"]),
		Format:      kv["st_ifmt"],
		LinkTarget:  kv["LinkTarget"],
		MTimeMs:     nanosToMillis(parseInt(kv["st_mtime"])),
		BirthtimeMs: nanosToMillis(parseInt(kv["st_birthtime"])),
		Raw:         kv,
	}
	return info
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func nanosToMillis(ns int64) int64 {
	return ns / 1_000_000
}
