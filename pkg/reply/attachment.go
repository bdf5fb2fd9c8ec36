package reply

import (
	"fmt"
	"path/filepath"
)

// ReadFunc reads the bytes of a file on disk.
type ReadFunc func(path string) ([]byte, error)

// Attachment is a file sent alongside a reply, backed either by bytes in
// memory or by a path read when the reply is encoded.
type Attachment struct {
	Name        string
	ContentType string
	Path        string
	Data        []byte
}

// FromPath returns an attachment read from path. The name defaults to the
// base name of path.
func FromPath(path string, name ...string) *Attachment {
	a := &Attachment{Path: path, Name: filepath.Base(path)}
	if len(name) > 0 && name[0] != "" {
		a.Name = name[0]
	}
	return a
}

// FromBytes returns an attachment holding data.
func FromBytes(data []byte, name string) *Attachment {
	return &Attachment{Data: data, Name: name}
}

// URL is the reference embeds use to display the attachment.
func (a *Attachment) URL() string {
	return "attachment://" + a.Name
}

// Bytes returns the attachment content, reading from disk when needed.
func (a *Attachment) Bytes(read ReadFunc) ([]byte, error) {
	if a.Data != nil {
		return a.Data, nil
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%s - attachment %q has neither data nor path", encoderLogPrefix, a.Name)
	}
	data, err := read(a.Path)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to read attachment %q: %w", encoderLogPrefix, a.Path, err)
	}
	return data, nil
}
