package reply

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

const encoderTestPrefix = "reply:encoder_test"

func TestEncode_JSONAppliesDefaultMentions(t *testing.T) {
	body, err := NewEncoder(nil).Encode(Text("pong"))
	if err != nil {
		t.Fatalf("%s - Encode: %v", encoderTestPrefix, err)
	}
	if body.ContentType != "application/json" {
		t.Errorf("%s - ContentType = %q, want application/json", encoderTestPrefix, body.ContentType)
	}
	if body.KeepAlive {
		t.Errorf("%s - JSON bodies should not request keep-alive", encoderTestPrefix)
	}
	want := `{"type":4,"data":{"content":"pong","allowed_mentions":{"parse":[]}}}`
	if string(body.Payload) != want {
		t.Errorf("%s - Payload = %s, want %s", encoderTestPrefix, body.Payload, want)
	}
}

func TestEncode_KeepsExplicitMentions(t *testing.T) {
	resp := Message(&Data{
		Content:         "<@1>",
		AllowedMentions: &AllowedMentions{Parse: []string{}, Users: []string{"1"}},
	})
	body, err := NewEncoder(nil).Encode(resp)
	if err != nil {
		t.Fatalf("%s - Encode: %v", encoderTestPrefix, err)
	}
	if !strings.Contains(string(body.Payload), `"users":["1"]`) {
		t.Errorf("%s - explicit mentions overridden: %s", encoderTestPrefix, body.Payload)
	}
}

func TestEncode_DoesNotMutateInput(t *testing.T) {
	resp := Text("hi")
	if _, err := NewEncoder(nil).Encode(resp); err != nil {
		t.Fatalf("%s - Encode: %v", encoderTestPrefix, err)
	}
	if resp.Data.AllowedMentions != nil {
		t.Errorf("%s - Encode mutated the caller's response", encoderTestPrefix)
	}
}

func TestEncode_PongAndAutocomplete(t *testing.T) {
	enc := NewEncoder(nil)

	body, err := enc.Encode(Pong())
	if err != nil {
		t.Fatalf("%s - Encode pong: %v", encoderTestPrefix, err)
	}
	if string(body.Payload) != `{"type":1}` {
		t.Errorf("%s - pong = %s", encoderTestPrefix, body.Payload)
	}

	body, err = enc.Encode(Autocomplete())
	if err != nil {
		t.Fatalf("%s - Encode autocomplete: %v", encoderTestPrefix, err)
	}
	if string(body.Payload) != `{"type":8,"data":{"choices":[]}}` {
		t.Errorf("%s - autocomplete = %s", encoderTestPrefix, body.Payload)
	}
}

func TestEncode_MultipartWithOneAttachment(t *testing.T) {
	resp := Message(&Data{
		Content: "report",
		Files:   []*Attachment{FromBytes([]byte("hello"), "report.txt")},
	})

	body, err := NewEncoder(nil).Encode(resp)
	if err != nil {
		t.Fatalf("%s - Encode: %v", encoderTestPrefix, err)
	}
	if !body.KeepAlive {
		t.Errorf("%s - multipart bodies must request keep-alive", encoderTestPrefix)
	}

	mediaType, params, err := mime.ParseMediaType(body.ContentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("%s - ContentType = %q (%v)", encoderTestPrefix, body.ContentType, err)
	}

	reader := multipart.NewReader(bytes.NewReader(body.Payload), params["boundary"])
	var fileParts, payloadParts int
	var order []string
	var payload Response
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("%s - NextPart: %v", encoderTestPrefix, err)
		}
		content, _ := io.ReadAll(part)
		order = append(order, part.FormName())
		switch part.FormName() {
		case "files[0]":
			fileParts++
			if part.FileName() != "report.txt" {
				t.Errorf("%s - filename = %q, want report.txt", encoderTestPrefix, part.FileName())
			}
			if string(content) != "hello" {
				t.Errorf("%s - file content = %q", encoderTestPrefix, content)
			}
		case "payload_json":
			payloadParts++
			if err := json.Unmarshal(content, &payload); err != nil {
				t.Fatalf("%s - payload_json: %v", encoderTestPrefix, err)
			}
		default:
			t.Errorf("%s - unexpected part %q", encoderTestPrefix, part.FormName())
		}
	}

	if fileParts != 1 || payloadParts != 1 {
		t.Fatalf("%s - got %d file parts and %d payload parts", encoderTestPrefix, fileParts, payloadParts)
	}
	// discordgo writes payload_json ahead of the files; Discord accepts either order.
	if strings.Join(order, ",") != "payload_json,files[0]" {
		t.Errorf("%s - part order = %v", encoderTestPrefix, order)
	}
	if payload.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("%s - payload type = %d", encoderTestPrefix, payload.Type)
	}
	if payload.Data == nil || len(payload.Data.Attachments) != 1 {
		t.Fatalf("%s - payload attachments = %+v", encoderTestPrefix, payload.Data)
	}
	if ref := payload.Data.Attachments[0]; ref.ID != "0" || ref.Filename != "report.txt" {
		t.Errorf("%s - attachment ref = %+v", encoderTestPrefix, ref)
	}
	if payload.Data.AllowedMentions == nil || len(payload.Data.AllowedMentions.Parse) != 0 {
		t.Errorf("%s - default mentions missing from payload_json", encoderTestPrefix)
	}
}

func TestEncode_ReadsPathAttachments(t *testing.T) {
	var readPath string
	read := func(path string) ([]byte, error) {
		readPath = path
		return []byte("png"), nil
	}

	resp := Message(&Data{Files: []*Attachment{FromPath("/tmp/images/chart.png")}})
	if _, err := NewEncoder(read).Encode(resp); err != nil {
		t.Fatalf("%s - Encode: %v", encoderTestPrefix, err)
	}
	if readPath != "/tmp/images/chart.png" {
		t.Errorf("%s - read path = %q", encoderTestPrefix, readPath)
	}
}

func TestEncode_ReadFailure(t *testing.T) {
	read := func(string) ([]byte, error) { return nil, errors.New("no such file") }

	resp := Message(&Data{Files: []*Attachment{FromPath("missing.png")}})
	if _, err := NewEncoder(read).Encode(resp); err == nil {
		t.Errorf("%s - expected read failure to surface", encoderTestPrefix)
	}
}

func TestAttachment_NameAndURL(t *testing.T) {
	a := FromPath("/var/data/report.pdf")
	if a.Name != "report.pdf" {
		t.Errorf("%s - Name = %q, want report.pdf", encoderTestPrefix, a.Name)
	}
	if a.URL() != "attachment://report.pdf" {
		t.Errorf("%s - URL = %q", encoderTestPrefix, a.URL())
	}

	renamed := FromPath("/var/data/report.pdf", "q3.pdf")
	if renamed.Name != "q3.pdf" {
		t.Errorf("%s - Name = %q, want q3.pdf", encoderTestPrefix, renamed.Name)
	}
}
