// Package esptest builds synthetic plugin files for tests.
package esptest

import "encoding/binary"

// PluginSpec describes a synthetic plugin to build.
type PluginSpec struct {
	Master      bool
	Light       bool
	Masters     []string
	Description string
	FormIDs     []uint32
}

const (
	flagMaster = 0x00000001
	flagLight  = 0x00000200
)

// Build produces the bytes of a Skyrim-SE-style plugin (24-byte record
// headers) containing a TES4 header record and one top-level group
// holding a record per FormID.
func Build(spec PluginSpec) []byte {
	var sub []byte
	sub = appendSubrecord(sub, "HEDR", make([]byte, 12))
	for _, m := range spec.Masters {
		sub = appendSubrecord(sub, "MAST", append([]byte(m), 0))
		sub = appendSubrecord(sub, "DATA", make([]byte, 8))
	}
	if spec.Description != "" {
		sub = appendSubrecord(sub, "SNAM", append([]byte(spec.Description), 0))
	}

	var flags uint32
	if spec.Master {
		flags |= flagMaster
	}
	if spec.Light {
		flags |= flagLight
	}

	out := appendRecordHeader(nil, "TES4", uint32(len(sub)), flags, 0)
	out = append(out, sub...)

	if len(spec.FormIDs) > 0 {
		var records []byte
		for _, fid := range spec.FormIDs {
			records = appendRecordHeader(records, "MISC", 0, 0, fid)
		}
		grup := make([]byte, 24)
		copy(grup[0:4], "GRUP")
		binary.LittleEndian.PutUint32(grup[4:8], uint32(24+len(records)))
		copy(grup[8:12], "MISC")
		out = append(out, grup...)
		out = append(out, records...)
	}
	return out
}

func appendRecordHeader(b []byte, typ string, dataSize, flags, formID uint32) []byte {
	hdr := make([]byte, 24)
	copy(hdr[0:4], typ)
	binary.LittleEndian.PutUint32(hdr[4:8], dataSize)
	binary.LittleEndian.PutUint32(hdr[8:12], flags)
	binary.LittleEndian.PutUint32(hdr[12:16], formID)
	return append(b, hdr...)
}

func appendSubrecord(b []byte, typ string, payload []byte) []byte {
	hdr := make([]byte, 6)
	copy(hdr[0:4], typ)
	binary.LittleEndian.PutUint16(hdr[4:6], uint16(len(payload)))
	b = append(b, hdr...)
	return append(b, payload...)
}
