package reply

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

const encoderLogPrefix = "reply:encoder"

// Body is an encoded response ready to be written to the transport.
type Body struct {
	ContentType string
	Payload     []byte
	// KeepAlive asks the transport to hold the connection open while the
	// multipart body is streamed.
	KeepAlive bool
}

// Encoder turns Responses into wire bodies.
type Encoder struct {
	read ReadFunc
}

// NewEncoder returns an encoder reading path-backed attachments with read,
// or os.ReadFile when read is nil.
func NewEncoder(read ReadFunc) *Encoder {
	if read == nil {
		read = os.ReadFile
	}
	return &Encoder{read: read}
}

// Encode applies the default mention policy and returns a JSON body, or a
// multipart body with one files[i] part per attachment plus payload_json
// when the response carries files. resp is not modified.
func (e *Encoder) Encode(resp *Response) (*Body, error) {
	if resp == nil {
		return nil, fmt.Errorf("%s - nil response", encoderLogPrefix)
	}

	out := *resp
	if resp.Data != nil {
		data := *resp.Data
		out.Data = &data
		if out.carriesMessage() && data.AllowedMentions == nil {
			out.Data.AllowedMentions = NoMentions()
		}
	}

	if out.Data == nil || len(out.Data.Files) == 0 {
		payload, err := json.Marshal(&out)
		if err != nil {
			return nil, fmt.Errorf("%s - failed to encode response: %w", encoderLogPrefix, err)
		}
		return &Body{ContentType: "application/json", Payload: payload}, nil
	}

	files := make([]*discordgo.File, 0, len(out.Data.Files))
	refs := make([]AttachmentRef, 0, len(out.Data.Files))
	for i, a := range out.Data.Files {
		content, err := a.Bytes(e.read)
		if err != nil {
			return nil, err
		}
		files = append(files, &discordgo.File{
			Name:        a.Name,
			ContentType: a.ContentType,
			Reader:      bytes.NewReader(content),
		})
		refs = append(refs, AttachmentRef{ID: strconv.Itoa(i), Filename: a.Name})
	}
	out.Data.Attachments = refs
	out.Data.Files = nil

	// payload_json is written before the files[i] parts. Discord reads the
	// parts by name, so the order carries no meaning.
	contentType, payload, err := discordgo.MultipartBodyWithJSON(&out, files)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to encode multipart response: %w", encoderLogPrefix, err)
	}
	return &Body{ContentType: contentType, Payload: payload, KeepAlive: true}, nil
}
