package sessions

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/Desarso/companion/models"
	"github.com/Desarso/companion/thread"
)

// Speech payloads are raw 24 kHz mono 16-bit little endian PCM.
const (
	pcmSampleRate    = 24000
	pcmChannels      = 1
	pcmBitsPerSample = 16
)

// MessageImage returns the decoded image attached to a message.
func (c *Chat) MessageImage(id string) (string, []byte, error) {
	msg, ok := c.thread.Get(id)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", thread.ErrNotFound, id)
	}
	if !models.IsDataURI(msg.Image) {
		return "", nil, ErrNoMedia
	}
	return models.ParseDataURI(msg.Image)
}

// MessageAudioWAV returns a message's speech as a playable WAV file.
func (c *Chat) MessageAudioWAV(id string) ([]byte, error) {
	msg, ok := c.thread.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", thread.ErrNotFound, id)
	}
	if msg.Audio == "" {
		return nil, ErrNoMedia
	}
	pcm, err := base64.StdEncoding.DecodeString(msg.Audio)
	if err != nil {
		return nil, fmt.Errorf("invalid audio payload: %w", err)
	}
	return WrapPCM(pcm), nil
}

// WrapPCM prefixes raw speech PCM with a RIFF/WAVE header.
func WrapPCM(pcm []byte) []byte {
	var buf bytes.Buffer
	byteRate := pcmSampleRate * pcmChannels * pcmBitsPerSample / 8
	blockAlign := pcmChannels * pcmBitsPerSample / 8

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(pcmChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(pcmSampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(pcmBitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
