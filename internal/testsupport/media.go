package testsupport

import (
	"bytes"
	"encoding/binary"
	"time"
)

const (
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003
	tiffTypeASCII       = 2
	tiffTypeLong        = 4
	mp4EpochOffset      = 2082844800
)

// JPEGWithCaptureTime returns a minimal JPEG whose APP1 segment carries an
// EXIF DateTimeOriginal tag set to value (normally "YYYY:MM:DD HH:MM:SS").
func JPEGWithCaptureTime(value string) []byte {
	order := binary.LittleEndian
	str := append([]byte(value), 0)

	var tiff bytes.Buffer
	tiff.WriteString("II*\x00")
	writeU32(&tiff, order, 8)

	// IFD0: a single pointer to the Exif sub-IFD.
	const ifd0Size = 2 + 12 + 4
	exifIFD := uint32(8 + ifd0Size)
	writeU16(&tiff, order, 1)
	writeEntry(&tiff, order, tagExifIFDPointer, tiffTypeLong, 1, exifIFD)
	writeU32(&tiff, order, 0)

	// Exif IFD: DateTimeOriginal stored out of line.
	const exifIFDSize = 2 + 12 + 4
	dataOffset := exifIFD + exifIFDSize
	writeU16(&tiff, order, 1)
	writeEntry(&tiff, order, tagDateTimeOriginal, tiffTypeASCII, uint32(len(str)), dataOffset)
	writeU32(&tiff, order, 0)
	tiff.Write(str)

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	writeU16(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write([]byte{0xFF, 0xD9})
	return out.Bytes()
}

// CorruptJPEG returns bytes that start like a JPEG but carry a truncated APP1
// segment, so EXIF decoding fails.
func CorruptJPEG() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x40, 'E', 'x', 'i', 'f', 0x00}
}

// MP4WithCreationTime returns a minimal ISO-BMFF file (ftyp + moov/mvhd v0)
// whose movie header creation time is ts. A zero ts writes a zero field.
func MP4WithCreationTime(ts time.Time) []byte {
	be := binary.BigEndian

	var creation uint32
	if !ts.IsZero() {
		creation = uint32(ts.Unix() + mp4EpochOffset)
	}

	var mvhd bytes.Buffer
	writeU32(&mvhd, be, 108)
	mvhd.WriteString("mvhd")
	writeU32(&mvhd, be, 0) // version 0, flags 0
	writeU32(&mvhd, be, creation)
	writeU32(&mvhd, be, creation)
	writeU32(&mvhd, be, 1000) // timescale
	writeU32(&mvhd, be, 0)    // duration
	writeU32(&mvhd, be, 0x00010000)
	writeU16(&mvhd, be, 0x0100)
	mvhd.Write(make([]byte, 2+8))
	for _, v := range []uint32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000} {
		writeU32(&mvhd, be, v)
	}
	mvhd.Write(make([]byte, 24))
	writeU32(&mvhd, be, 2) // next track id

	var out bytes.Buffer
	writeU32(&out, be, 20)
	out.WriteString("ftypisom")
	writeU32(&out, be, 0x200)
	out.WriteString("isom")
	writeU32(&out, be, uint32(8+mvhd.Len()))
	out.WriteString("moov")
	out.Write(mvhd.Bytes())
	return out.Bytes()
}

func writeEntry(buf *bytes.Buffer, order binary.ByteOrder, tag, typ uint16, count, value uint32) {
	writeU16(buf, order, tag)
	writeU16(buf, order, typ)
	writeU32(buf, order, count)
	writeU32(buf, order, value)
}

func writeU16(buf *bytes.Buffer, order binary.ByteOrder, v uint16) {
	var b [2]byte
	order.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, order binary.ByteOrder, v uint32) {
	var b [4]byte
	order.PutUint32(b[:], v)
	buf.Write(b[:])
}
