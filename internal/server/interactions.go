package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/morezero/interactions-gateway/pkg/dispatcher"
	"github.com/morezero/interactions-gateway/pkg/signature"
)

const headerRequestID = "X-Request-Id"

// handleInteraction verifies, parses, dispatches and encodes one interaction.
// The body is never parsed before its signature has been verified.
func (s *Server) handleInteraction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		logger := s.logger.With("request_id", requestID)
		w.Header().Set(headerRequestID, requestID)

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeText(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeText(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			logger.Warn(fmt.Sprintf("%s - failed to read body: %v", logPrefix, err))
			writeText(w, http.StatusBadRequest, "failed to read body")
			return
		}

		timestamp := r.Header.Get(signature.HeaderTimestamp)
		sig := r.Header.Get(signature.HeaderSignature)
		if err := s.verifier.Verify(timestamp, sig, body); err != nil {
			s.metrics.SignatureFailure()
			logger.Warn(fmt.Sprintf("%s - rejected request from %s: %v", logPrefix, r.RemoteAddr, err))
			writeText(w, http.StatusUnauthorized, dispatcher.MessageInvalidSignature)
			return
		}

		var interaction discordgo.Interaction
		if err := json.Unmarshal(body, &interaction); err != nil {
			logger.Warn(fmt.Sprintf("%s - malformed interaction: %v", logPrefix, err))
			writeText(w, http.StatusBadRequest, dispatcher.MessageInvalidInteraction)
			return
		}

		res := s.dispatcher.Dispatch(r.Context(), requestID, &interaction)
		if res.Response == nil {
			writeText(w, res.Status, res.Text)
			return
		}

		out, err := s.encoder.Encode(res.Response)
		if err != nil {
			logger.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err),
				"command", res.Command,
				"custom_id", res.CustomID,
			)
			writeText(w, http.StatusInternalServerError, "failed to encode response")
			return
		}

		w.Header().Set("Content-Type", out.ContentType)
		if out.KeepAlive {
			w.Header().Set("Connection", "keep-alive")
		}
		w.WriteHeader(res.Status)
		if _, err := w.Write(out.Payload); err != nil {
			logger.Warn(fmt.Sprintf("%s - failed to write response: %v", logPrefix, err))
		}
	}
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}
